package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface is the command surface the REPL dispatches to. *App satisfies
// it; tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	Logout(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context, args []string) error
	Favorite(ctx context.Context, args []string) error
	Favorites(ctx context.Context, args []string) error
	SortFavorites(ctx context.Context, args []string) error
	Unfavorite(ctx context.Context, args []string) error
	ClearFavorites(ctx context.Context, args []string) error
	Pending(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	ClearSynced(ctx context.Context, args []string) error
	Info(ctx context.Context, args []string) error
	Subscribe(ctx context.Context, args []string) error
	Unsubscribe(ctx context.Context, args []string) error
	Wipe(ctx context.Context, args []string) error
}

const (
	helpGuest  = "Available commands: register, login, (l)ist [page], show <id>, favs [query], info, exit"
	helpMember = "Available commands: (l)ist [page], show <id>, add, fav <id>, favs [query], sort <key> [asc|desc], " +
		"unfav <id>, clearfavs, pending, sync, clearsynced, info, subscribe <endpoint> <p256dh> <auth>, " +
		"unsubscribe, wipe, logout, exit"
)

// runREPL reads commands from scanner until EOF or exit. Command errors are
// printed and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner, w io.Writer) {
	commands := map[string]func(context.Context, []string) error{
		"register":    a.Register,
		"login":       a.Login,
		"logout":      a.Logout,
		"l":           a.List,
		"list":        a.List,
		"show":        a.Show,
		"add":         a.Add,
		"fav":         a.Favorite,
		"favs":        a.Favorites,
		"sort":        a.SortFavorites,
		"unfav":       a.Unfavorite,
		"clearfavs":   a.ClearFavorites,
		"pending":     a.Pending,
		"sync":        a.Sync,
		"clearsynced": a.ClearSynced,
		"info":        a.Info,
		"subscribe":   a.Subscribe,
		"unsubscribe": a.Unsubscribe,
		"wipe":        a.Wipe,
	}

	for {
		fmt.Fprintf(w, "berbagi %s> ", statusFn())
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpMember)
			} else {
				fmt.Fprintln(w, helpGuest)
			}
			continue
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		}

		fn, ok := commands[cmd]
		if !ok {
			fmt.Fprintln(w, "Unknown command:", cmd)
			continue
		}
		if err := fn(ctx, args); err != nil {
			fmt.Fprintln(w, "error:", err)
		}
	}
}
