package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSub = api.Subscription{
	Endpoint: "https://push.example.com/abc",
	Keys:     api.SubscriptionKeys{P256dh: "key", Auth: "auth"},
}

func TestPush_SubscribeAndUnsubscribe(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	fc := &fakeClient{}
	p := NewPush(fc, loggedIn(t, st, fc), st.Metadata(), logging.Nop())

	perm, err := p.Permission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionDefault, perm)

	require.NoError(t, p.Subscribe(ctx, testSub))
	require.Len(t, fc.subscribed, 1)

	perm, err = p.Permission(ctx)
	require.NoError(t, err)
	assert.Equal(t, PermissionGranted, perm)
	ep, err := p.Endpoint(ctx)
	require.NoError(t, err)
	assert.Equal(t, testSub.Endpoint, ep)

	require.NoError(t, p.Unsubscribe(ctx))
	assert.Equal(t, []string{testSub.Endpoint}, fc.unsubscribed)
	ep, err = p.Endpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, ep)
}

func TestPush_DeniedIsFinal(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	fc := &fakeClient{}
	p := NewPush(fc, loggedIn(t, st, fc), st.Metadata(), logging.Nop())

	require.NoError(t, p.SetPermission(ctx, PermissionDenied))
	require.ErrorIs(t, p.Subscribe(ctx, testSub), common.ErrPermissionDenied)
	assert.Empty(t, fc.subscribed)

	require.Error(t, p.SetPermission(ctx, "maybe"))
}

func TestPush_SubscribeFailureStoresNothing(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	fc := &fakeClient{}
	p := NewPush(fc, loggedIn(t, st, fc), st.Metadata(), logging.Nop())
	fc.subscribeErr = errors.New("rejected")

	require.Error(t, p.Subscribe(ctx, testSub))
	ep, err := p.Endpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, ep)
}

func TestPush_UnsubscribeSurvivesServerFailure(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	fc := &fakeClient{}
	p := NewPush(fc, loggedIn(t, st, fc), st.Metadata(), logging.Nop())
	require.NoError(t, p.Subscribe(ctx, testSub))

	fc.unsubscribeErr = api.ErrUnavailable
	require.NoError(t, p.Unsubscribe(ctx))
	ep, err := p.Endpoint(ctx)
	require.NoError(t, err)
	assert.Empty(t, ep)

	require.NoError(t, p.Unsubscribe(ctx))
	assert.Len(t, fc.unsubscribed, 1)
}
