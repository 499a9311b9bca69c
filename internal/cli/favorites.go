package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/berbagi/internal/models"
)

// Favorite toggles the favorite state of a story fetched by id.
func (a *App) Favorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: fav <id>")
	}
	s, err := a.stories.Get(ctx, args[0])
	if err != nil {
		return err
	}
	on, err := a.favorites.Toggle(ctx, *s)
	if err != nil {
		return err
	}
	if on {
		a.printf("Added %s to favorites\n", s.ID)
	} else {
		a.printf("Removed %s from favorites\n", s.ID)
	}
	return nil
}

// Favorites lists the saved stories, filtered by the optional query.
func (a *App) Favorites(ctx context.Context, args []string) error {
	var (
		items []models.FavoriteStory
		err   error
	)
	if len(args) > 0 {
		items, err = a.favorites.Search(ctx, strings.Join(args, " "))
	} else {
		items, err = a.favorites.List(ctx)
	}
	if err != nil {
		return err
	}
	a.printFavorites(items)
	return nil
}

func (a *App) SortFavorites(ctx context.Context, args []string) error {
	var key, dir string
	switch len(args) {
	case 0:
	case 1:
		key = args[0]
	case 2:
		key, dir = args[0], args[1]
	default:
		return errors.New("usage: sort <name|createdAt|savedAt> [asc|desc]")
	}
	items, err := a.favorites.Sort(ctx, key, dir)
	if err != nil {
		return err
	}
	a.printFavorites(items)
	return nil
}

func (a *App) Unfavorite(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: unfav <id>")
	}
	if err := a.favorites.Delete(ctx, args[0]); err != nil {
		return err
	}
	a.println("Removed")
	return nil
}

func (a *App) ClearFavorites(ctx context.Context, _ []string) error {
	if err := a.favorites.Clear(ctx); err != nil {
		return err
	}
	a.println("Favorites cleared")
	return nil
}

func (a *App) printFavorites(items []models.FavoriteStory) {
	if len(items) == 0 {
		a.println("No favorites")
		return
	}
	for _, f := range items {
		a.printf("%s  %-20s %s  (saved %s)\n", f.ID, f.Name, truncate(f.Description, 50), f.SavedAt.Local().Format("2006-01-02 15:04"))
	}
}
