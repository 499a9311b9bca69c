package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth_LoginPersistsSession(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	fc := &fakeClient{}
	a := loggedIn(t, st, fc)

	tok, err := a.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	name, err := a.UserName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dimas", name)
}

func TestAuth_LoginFailureKeepsNoSession(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	fc := &fakeClient{loginErr: &api.APIError{Status: 401, Message: "bad credentials"}}
	a := NewAuth(fc, st.Metadata())

	_, err := a.Login(ctx, "d@example.com", "wrong")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = a.Token(ctx)
	require.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestAuth_Logout(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	a := loggedIn(t, st, &fakeClient{})

	require.NoError(t, a.Logout(ctx))
	_, err := a.Token(ctx)
	require.ErrorIs(t, err, common.ErrNotLoggedIn)

	name, err := a.UserName(ctx)
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestAuth_RegisterAndPingDelegate(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	boom := errors.New("boom")
	a := NewAuth(&fakeClient{registerErr: boom, pingErr: api.ErrUnavailable}, st.Metadata())

	require.ErrorIs(t, a.Register(ctx, "n", "e", "p"), boom)
	require.ErrorIs(t, a.Ping(ctx), api.ErrUnavailable)
}
