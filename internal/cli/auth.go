package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
)

// Indirections over the interactive input helpers, swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register prompts for a name, email and password and creates an account.
func (a *App) Register(ctx context.Context, _ []string) error {
	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, name, email, string(password)); err != nil {
		return err
	}
	a.println("Success! You can now login.")
	return nil
}

// Login authenticates and stores the session for later runs.
func (a *App) Login(ctx context.Context, _ []string) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	lr, err := a.auth.Login(ctx, email, string(password))
	if err != nil {
		if errors.Is(err, api.ErrUnavailable) {
			return errors.New("server unavailable, login needs a connection")
		}
		return err
	}
	a.userName = lr.Name
	a.printf("Welcome, %s!\n", lr.Name)
	return nil
}

// Logout forgets the stored session. Favorites and queued stories stay.
func (a *App) Logout(ctx context.Context, _ []string) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	a.userName = ""
	a.println("Logged out")
	return nil
}
