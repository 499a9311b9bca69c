package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/filex"
)

const pageSize = 10

// List prints one page of stories; the optional argument is the page number.
func (a *App) List(ctx context.Context, args []string) error {
	page := 1
	if len(args) > 0 {
		p, err := strconv.Atoi(args[0])
		if err != nil || p < 1 {
			return errors.New("usage: list [page]")
		}
		page = p
	}

	stories, err := a.stories.List(ctx, api.ListOptions{Page: page, Size: pageSize})
	if err != nil {
		return err
	}
	if len(stories) == 0 {
		a.println("No stories")
		return nil
	}
	for _, s := range stories {
		a.printf("%s  %-20s %s\n", s.ID, s.Name, truncate(s.Description, 60))
	}
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	s, err := a.stories.Get(ctx, args[0])
	if err != nil {
		return err
	}

	a.printf("ID:          %s\n", s.ID)
	a.printf("Author:      %s\n", s.Name)
	a.printf("Created:     %s\n", s.CreatedAt)
	a.printf("Photo:       %s\n", s.PhotoURL)
	if s.Lat != nil && s.Lon != nil {
		a.printf("Location:    %.6f, %.6f\n", *s.Lat, *s.Lon)
	}
	a.printf("Description:\n%s\n", s.Description)

	fav, err := a.favorites.Get(ctx, s.ID)
	if err == nil && fav != nil {
		a.println("(in favorites)")
	}
	return nil
}

// Add prompts for a story and posts it. When the API cannot be reached the
// story is queued and sent by the next sync.
func (a *App) Add(ctx context.Context, _ []string) error {
	desc, err := getMultiline(a.reader, "Enter description", a.out)
	if err != nil {
		return err
	}
	photoPath, err := getSimpleText(a.reader, "Photo file (empty for none)", a.out)
	if err != nil {
		return err
	}
	location, err := getSimpleText(a.reader, "Location as lat,lon (empty for none)", a.out)
	if err != nil {
		return err
	}

	story := api.NewStory{Description: desc}
	if photoPath != "" {
		story.Photo, story.PhotoType, err = filex.ReadPhoto(photoPath)
		if err != nil {
			return err
		}
	}
	if location != "" {
		lat, lon, err := parseLocation(location)
		if err != nil {
			return err
		}
		story.Lat, story.Lon = &lat, &lon
	}

	res, err := a.stories.Add(ctx, story)
	if err != nil {
		return err
	}
	if res.Queued {
		a.printf("Offline: story #%d saved and will be sent on the next sync\n", res.PendingID)
		return nil
	}
	a.println("Story published")
	return nil
}
