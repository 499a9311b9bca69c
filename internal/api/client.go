// Package api is the client of the remote Story REST API.
package api

import (
	"context"
)

type Client interface {
	Ping(ctx context.Context) error
	ListStories(ctx context.Context, token string, opts ListOptions) ([]Story, error)
	GetStory(ctx context.Context, token, id string) (*Story, error)
	AddStory(ctx context.Context, token string, s NewStory) error
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Subscribe(ctx context.Context, token string, sub Subscription) error
	Unsubscribe(ctx context.Context, token, endpoint string) error
}
