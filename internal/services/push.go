package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/repositories/metadata"
)

// Notification permission states.
const (
	PermissionDefault = "default"
	PermissionGranted = "granted"
	PermissionDenied  = "denied"
)

type PushService interface {
	Permission(ctx context.Context) (string, error)
	SetPermission(ctx context.Context, state string) error
	Subscribe(ctx context.Context, sub api.Subscription) error
	Unsubscribe(ctx context.Context) error
	Endpoint(ctx context.Context) (string, error)
}

type Push struct {
	client api.Client
	auth   TokenSource
	meta   metadata.Repository
	log    logging.Logger
}

var _ PushService = (*Push)(nil)

func NewPush(client api.Client, auth TokenSource, meta metadata.Repository, log logging.Logger) *Push {
	return &Push{client: client, auth: auth, meta: meta, log: log}
}

func (p *Push) Permission(ctx context.Context) (string, error) {
	v, err := p.meta.GetString(ctx, common.MetaPushPermission)
	if err != nil {
		return "", err
	}
	if v == "" {
		return PermissionDefault, nil
	}
	return v, nil
}

func (p *Push) SetPermission(ctx context.Context, state string) error {
	switch state {
	case PermissionDefault, PermissionGranted, PermissionDenied:
	default:
		return fmt.Errorf("unknown permission state %q", state)
	}
	return p.meta.SetString(ctx, common.MetaPushPermission, state)
}

// Subscribe registers sub with the API. A denied permission is final and
// returns common.ErrPermissionDenied without contacting the API.
func (p *Push) Subscribe(ctx context.Context, sub api.Subscription) error {
	perm, err := p.Permission(ctx)
	if err != nil {
		return err
	}
	if perm == PermissionDenied {
		return common.ErrPermissionDenied
	}

	tok, err := p.auth.Token(ctx)
	if err != nil {
		return err
	}
	if err := p.client.Subscribe(ctx, tok, sub); err != nil {
		return err
	}
	if err := p.meta.SetString(ctx, common.MetaPushEndpoint, sub.Endpoint); err != nil {
		return err
	}
	return p.SetPermission(ctx, PermissionGranted)
}

// Unsubscribe removes the stored subscription. A server failure is logged
// and the local subscription is dropped anyway.
func (p *Push) Unsubscribe(ctx context.Context) error {
	endpoint, err := p.Endpoint(ctx)
	if err != nil {
		return err
	}
	if endpoint == "" {
		return nil
	}

	if tok, err := p.auth.Token(ctx); err == nil {
		if err := p.client.Unsubscribe(ctx, tok, endpoint); err != nil {
			p.log.Warn(ctx, "server unsubscribe failed", "error", err)
		}
	}
	return p.meta.Delete(ctx, common.MetaPushEndpoint)
}

func (p *Push) Endpoint(ctx context.Context) (string, error) {
	return p.meta.GetString(ctx, common.MetaPushEndpoint)
}
