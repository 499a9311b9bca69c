package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/repositories/metadata"
)

// AuthService defines authentication operations.
//
//   - Login persists the token and user name in the metadata store.
//   - Token returns common.ErrNotLoggedIn when no session is stored.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*api.LoginResult, error)
	Logout(ctx context.Context) error
	Token(ctx context.Context) (string, error)
	UserName(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type Auth struct {
	client api.Client
	meta   metadata.Repository
}

var _ AuthService = (*Auth)(nil)

func NewAuth(client api.Client, meta metadata.Repository) *Auth {
	return &Auth{client: client, meta: meta}
}

func (a *Auth) Register(ctx context.Context, name, email, password string) error {
	return a.client.Register(ctx, name, email, password)
}

func (a *Auth) Login(ctx context.Context, email, password string) (*api.LoginResult, error) {
	lr, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := a.meta.SetString(ctx, common.MetaAuthToken, lr.Token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	if err := a.meta.SetString(ctx, common.MetaUserName, lr.Name); err != nil {
		return nil, fmt.Errorf("save user name: %w", err)
	}
	return lr, nil
}

func (a *Auth) Logout(ctx context.Context) error {
	if err := a.meta.Delete(ctx, common.MetaAuthToken); err != nil {
		return err
	}
	return a.meta.Delete(ctx, common.MetaUserName)
}

func (a *Auth) Token(ctx context.Context) (string, error) {
	tok, err := a.meta.GetString(ctx, common.MetaAuthToken)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", common.ErrNotLoggedIn
	}
	return tok, nil
}

func (a *Auth) UserName(ctx context.Context) (string, error) {
	return a.meta.GetString(ctx, common.MetaUserName)
}

func (a *Auth) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}
