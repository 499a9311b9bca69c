package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/localstore"
	"github.com/stretchr/testify/require"
)

// fakeClient records calls and returns the configured errors.
type fakeClient struct {
	mu sync.Mutex

	pingErr        error
	addErr         error
	loginRet       *api.LoginResult
	loginErr       error
	registerErr    error
	subscribeErr   error
	unsubscribeErr error
	stories        []api.Story

	added        []api.NewStory
	tokens       []string
	subscribed   []api.Subscription
	unsubscribed []string
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) ListStories(_ context.Context, token string, _ api.ListOptions) ([]api.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	return f.stories, nil
}

func (f *fakeClient) GetStory(_ context.Context, token, id string) (*api.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	for i := range f.stories {
		if f.stories[i].ID == id {
			s := f.stories[i]
			return &s, nil
		}
	}
	return nil, nil
}

func (f *fakeClient) AddStory(_ context.Context, token string, s api.NewStory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, token)
	f.added = append(f.added, s)
	return f.addErr
}

func (f *fakeClient) Register(context.Context, string, string, string) error { return f.registerErr }

func (f *fakeClient) Login(context.Context, string, string) (*api.LoginResult, error) {
	return f.loginRet, f.loginErr
}

func (f *fakeClient) Subscribe(_ context.Context, _ string, sub api.Subscription) error {
	f.subscribed = append(f.subscribed, sub)
	return f.subscribeErr
}

func (f *fakeClient) Unsubscribe(_ context.Context, _ string, endpoint string) error {
	f.unsubscribed = append(f.unsubscribed, endpoint)
	return f.unsubscribeErr
}

func openStore(t *testing.T) *localstore.Store {
	t.Helper()
	st, err := localstore.Open(context.Background(), filepath.Join(t.TempDir(), "svc.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func loggedIn(t *testing.T, st *localstore.Store, fc *fakeClient) *Auth {
	t.Helper()
	fc.loginRet = &api.LoginResult{UserID: "user-1", Name: "Dimas", Token: "tok-1"}
	a := NewAuth(fc, st.Metadata())
	_, err := a.Login(context.Background(), "d@example.com", "secret")
	require.NoError(t, err)
	return a
}
