package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *RESTClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewRESTClient(srv.URL+"/v1", srv.Client(), logging.Nop())
	require.NoError(t, err)
	return c
}

func TestListStories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stories", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "5", r.URL.Query().Get("size"))
		assert.Equal(t, "1", r.URL.Query().Get("location"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"error":false,"message":"Stories fetched successfully","listStory":[{"id":"story-1","name":"Dina","description":"hi","photoUrl":"https://img/1.jpg","createdAt":"2026-01-01T00:00:00Z","lat":-6.2,"lon":106.8}]}`)
	})

	stories, err := c.ListStories(context.Background(), "tok", ListOptions{Page: 2, Size: 5, Location: true})
	require.NoError(t, err)
	require.Len(t, stories, 1)
	assert.Equal(t, "story-1", stories[0].ID)
	require.NotNil(t, stories[0].Lat)
	assert.Equal(t, -6.2, *stories[0].Lat)
}

func TestGetStory_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/stories/missing":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":true,"message":"Story not found"}`)
		case "/v1/stories/secret":
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":true,"message":"Missing authentication"}`)
		default:
			_, _ = io.WriteString(w, `{"error":false,"message":"ok","story":{"id":"s1","name":"n"}}`)
		}
	})
	ctx := context.Background()

	s, err := c.GetStory(ctx, "", "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)

	_, err = c.GetStory(ctx, "", "missing")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Story not found", apiErr.Message)
	assert.False(t, apiErr.Temporary())

	_, err = c.GetStory(ctx, "", "secret")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestTransportFailure_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewRESTClient(url, nil, logging.Nop())
	require.NoError(t, err)

	_, err = c.ListStories(context.Background(), "", ListOptions{})
	require.ErrorIs(t, err, ErrUnavailable)
	require.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}

func TestErrorFlagOn200(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":true,"message":"nope"}`)
	})
	err := c.Register(context.Background(), "n", "e@x", "pw")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
}

func TestAddStory_AnySuccessBody(t *testing.T) {
	bodies := []string{"", "created", `{"message":"ok"}`}
	for _, b := range bodies {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, b)
		})
		assert.NoError(t, c.AddStory(context.Background(), "tok", NewStory{Description: "d"}), "body %q", b)
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":true,"message":"rejected"}`)
	})
	var apiErr *APIError
	require.ErrorAs(t, c.AddStory(context.Background(), "tok", NewStory{Description: "d"}), &apiErr)

	c = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})
	_, err := c.ListStories(context.Background(), "", ListOptions{})
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, http.StatusOK, decodeErr.Status)
}

func TestAddStory_Multipart(t *testing.T) {
	lat, lon := -6.175, 106.8272
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer queued-token", r.Header.Get("Authorization"))
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Jalan-jalan", r.FormValue("description"))
		assert.Equal(t, "-6.175", r.FormValue("lat"))
		assert.Equal(t, "106.8272", r.FormValue("lon"))

		f, hdr, err := r.FormFile("photo")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, PhotoFileName, hdr.Filename)
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		b, _ := io.ReadAll(f)
		assert.Equal(t, []byte{1, 2, 3}, b)

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"error":false,"message":"Story created successfully"}`)
	})

	err := c.AddStory(context.Background(), "queued-token", NewStory{
		Description: "Jalan-jalan", Photo: []byte{1, 2, 3}, PhotoType: "image/png", Lat: &lat, Lon: &lon,
	})
	require.NoError(t, err)
}

func TestLogin_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want LoginResult
	}{
		{"loginResult", `{"error":false,"message":"success","loginResult":{"userId":"user-1","name":"Dina","token":"t1"}}`, LoginResult{UserID: "user-1", Name: "Dina", Token: "t1"}},
		{"data", `{"error":false,"data":{"name":"Dina","token":"t2"}}`, LoginResult{Name: "Dina", Token: "t2"}},
		{"top-level", `{"error":false,"token":"t3"}`, LoginResult{Token: "t3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				var in map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
				assert.Equal(t, "dina@example.com", in["email"])
				_, _ = io.WriteString(w, tt.body)
			})
			got, err := c.Login(context.Background(), "dina@example.com", "secret")
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"error":false,"message":"ok"}`)
	})
	_, err := c.Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestSubscribeAndUnsubscribe(t *testing.T) {
	var got []map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/notifications/subscribe", r.URL.Path)
		var in map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		in["_method"] = r.Method
		got = append(got, in)
		_, _ = io.WriteString(w, `{"error":false,"message":"ok"}`)
	})
	ctx := context.Background()

	require.NoError(t, c.Subscribe(ctx, "tok", Subscription{
		Endpoint: "https://push.example/abc",
		Keys:     SubscriptionKeys{P256dh: "pk", Auth: "ak"},
	}))
	require.NoError(t, c.Unsubscribe(ctx, "tok", "https://push.example/abc"))

	require.Len(t, got, 2)
	assert.Equal(t, "POST", got[0]["_method"])
	assert.Equal(t, map[string]any{"p256dh": "pk", "auth": "ak"}, got[0]["keys"])
	assert.Equal(t, "DELETE", got[1]["_method"])
	assert.Equal(t, "https://push.example/abc", got[1]["endpoint"])
}

func TestTokenSubject(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": "user-42"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "user-42", TokenSubject(tok))

	tok, err = jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "sub-1"}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "sub-1", TokenSubject(tok))

	assert.Empty(t, TokenSubject("not-a-jwt"))
	assert.Empty(t, TokenSubject(""))
}
