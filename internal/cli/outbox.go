package cli

import (
	"context"

	"github.com/dmitrijs2005/berbagi/internal/api"
)

// Pending lists the queued stories with their sync state.
func (a *App) Pending(ctx context.Context, _ []string) error {
	items, err := a.outbox.ListPendingWrites(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		a.println("Nothing queued")
		return nil
	}
	for _, p := range items {
		state := "waiting"
		if p.Synced {
			state = "synced"
		}
		a.printf("#%d  %-8s %s  %s\n", p.ID, state, p.CreatedAt.Local().Format("2006-01-02 15:04"), truncate(p.Description, 50))
	}
	return nil
}

// Sync replays the queued stories now instead of waiting for the watcher.
func (a *App) Sync(ctx context.Context, _ []string) error {
	res, err := a.syncer.RunOnce(ctx)
	if err != nil {
		return err
	}
	if res.Total == 0 {
		a.println("Nothing to sync")
		return nil
	}
	a.printf("Synced %d of %d stories (%d failed)\n", res.Committed, res.Total, res.Failed)
	return nil
}

func (a *App) ClearSynced(ctx context.Context, _ []string) error {
	n, err := a.outbox.ClearSyncedWrites(ctx)
	if err != nil {
		return err
	}
	a.printf("Removed %d synced stories\n", n)
	return nil
}

func (a *App) Info(ctx context.Context, _ []string) error {
	info, err := a.outbox.Info(ctx)
	if err != nil {
		return err
	}
	a.printf("Database:        %s (schema v%d)\n", info.DBName, info.DBVersion)
	a.printf("Favorites:       %d\n", info.TotalFavorites)
	a.printf("Offline stories: %d\n", info.TotalOfflineStories)
	return nil
}

// Wipe clears favorites and the outbox. The session is kept.
func (a *App) Wipe(ctx context.Context, _ []string) error {
	answer, err := getSimpleText(a.reader, "Delete all favorites and queued stories? (yes/no)", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		a.println("Cancelled")
		return nil
	}
	if err := a.outbox.ClearAll(ctx); err != nil {
		return err
	}
	a.println("Local data cleared")
	return nil
}

func (a *App) Subscribe(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return errUsageSubscribe
	}
	sub := api.Subscription{
		Endpoint: args[0],
		Keys:     api.SubscriptionKeys{P256dh: args[1], Auth: args[2]},
	}
	if err := a.push.Subscribe(ctx, sub); err != nil {
		return err
	}
	a.println("Push notifications enabled")
	return nil
}

func (a *App) Unsubscribe(ctx context.Context, _ []string) error {
	if err := a.push.Unsubscribe(ctx); err != nil {
		return err
	}
	a.println("Push notifications disabled")
	return nil
}
