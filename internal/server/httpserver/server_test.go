package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/dmitrijs2005/berbagi/internal/notify"
	"github.com/dmitrijs2005/berbagi/internal/syncer"
	"github.com/dmitrijs2005/berbagi/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	msgs   []worker.Message
	err    error
	status worker.Status
}

func (f *fakeWorker) HandleMessage(_ context.Context, msg worker.Message) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}
func (f *fakeWorker) Status() worker.Status { return f.status }

type fakeSyncer struct{ tags []string }

func (f *fakeSyncer) Register(_ context.Context, tag string) bool {
	f.tags = append(f.tags, tag)
	return tag == common.SyncTag
}
func (f *fakeSyncer) Status() syncer.Status {
	return syncer.Status{State: syncer.StateIdle, Last: syncer.Result{Total: 2, Committed: 2}}
}

type fakeInfo struct{}

func (fakeInfo) Info(context.Context) (*models.StorageInfo, error) {
	return &models.StorageInfo{TotalFavorites: 1, TotalOfflineStories: 3, DBName: "berbagi-story.db", DBVersion: 3}, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	seen []notify.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n notify.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, n)
	return nil
}

type fakeProxy struct {
	reqs []*http.Request
	err  error
}

func (f *fakeProxy) RoundTrip(req *http.Request) (*http.Response, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"text/plain"}, "Connection": {"close"}},
		Body:       io.NopCloser(strings.NewReader("proxied " + req.URL.String())),
		Request:    req,
	}, nil
}

type fixture struct {
	srv      *Server
	worker   *fakeWorker
	syncer   *fakeSyncer
	notifier *recordingNotifier
	proxy    *fakeProxy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		worker:   &fakeWorker{status: worker.Status{Active: "v2"}},
		syncer:   &fakeSyncer{},
		notifier: &recordingNotifier{},
		proxy:    &fakeProxy{},
	}
	m := metrics.New()
	srv, err := New(":0", Deps{
		Proxy:      f.proxy,
		AppBaseURL: "http://app.local/berbagi",
		Worker:     f.worker,
		Syncer:     f.syncer,
		Bridge:     notify.NewBridge(f.notifier, logging.Nop(), m),
		Info:       fakeInfo{},
		Metrics:    m,
		Log:        logging.Nop(),
	})
	require.NoError(t, err)
	f.srv = srv
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(":0", Deps{AppBaseURL: "/relative", Log: logging.Nop()})
	require.Error(t, err)
}

func TestMessage(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/_sw/message", `{"type":"SKIP_WAITING"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active":"v2"}`, rec.Body.String())
	assert.Equal(t, []worker.Message{{Type: "SKIP_WAITING"}}, f.worker.msgs)

	f.worker.err = common.ErrNoWaiting
	rec = f.do(http.MethodPost, "/_sw/message", `{"type":"SKIP_WAITING"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.worker.err = errors.New("activate failed")
	rec = f.do(http.MethodPost, "/_sw/message", `{"type":"SKIP_WAITING"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = f.do(http.MethodPost, "/_sw/message", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSync(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/_sw/sync", `{"tag":"sync-stories"}`)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.JSONEq(t, `{"registered":true}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/_sw/sync", `{"tag":"other"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"registered":false}`, rec.Body.String())
	assert.Equal(t, []string{"sync-stories", "other"}, f.syncer.tags)
}

func TestPush(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/_sw/push", `{"title":"Halo","message":"Cerita dari Bandung","url":"./#/stories/7"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var n notify.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, "Halo", n.Title)
	assert.Equal(t, "Cerita dari Bandung", n.Body)
	require.Len(t, f.notifier.seen, 1)
	assert.Equal(t, "./#/stories/7", f.notifier.seen[0].Data.URL)

	rec = f.do(http.MethodPost, "/_sw/push", `garbage`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, notify.DefaultTitle, n.Title)
}

func TestNotificationClick(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/_sw/notificationclick", `{"action":"open","notification":{"data":{"url":"./#/stories/7"}}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"open":true,"url":"http://app.local/berbagi/#/stories/7"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/_sw/notificationclick", `{"action":"close"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"open":false}`, rec.Body.String())
}

func TestStatus(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/_sw/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "v2", got.Worker.Active)
	assert.Equal(t, syncer.StateIdle, got.Sync.State)
	assert.Equal(t, 2, got.Sync.Last.Committed)
	require.NotNil(t, got.Storage)
	assert.Equal(t, 3, got.Storage.TotalOfflineStories)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(http.MethodPost, "/_sw/push", `{}`)

	rec := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `berbagi_notifications_total{source="push"} 1`)
}

func TestProxy_OriginForm(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/icons/icon-96x96.png?v=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "proxied http://app.local/berbagi/icons/icon-96x96.png?v=2", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Connection"))

	require.Len(t, f.proxy.reqs, 1)
	out := f.proxy.reqs[0]
	assert.Equal(t, "app.local", out.Host)
	assert.Empty(t, out.RequestURI)
}

func TestProxy_AbsoluteForm(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "http://story-api.example/v1/stories?page=1", nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "proxied http://story-api.example/v1/stories?page=1", rec.Body.String())
}

func TestProxy_TransportError(t *testing.T) {
	f := newFixture(t)
	f.proxy.err = errors.New("dial failed")

	rec := f.do(http.MethodGet, "/index.html", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
