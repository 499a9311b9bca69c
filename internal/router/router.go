// Package router routes every outbound GET through one of four caching
// strategies (network-first for API calls and documents, cache-first for
// images, stale-while-revalidate for static assets). Router is an
// http.RoundTripper, so it can back an *http.Client or a reverse proxy.
package router

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/cache"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/models"
)

const (
	offlineAPIBody  = `{"error":true,"message":"Offline - Data tidak tersedia"}`
	placeholderPath = "./icons/icon-192x192.png"
	rootDocPath     = "./index.html"
)

// Controller exposes the cache generation currently in control.
// Active returns nil when no generation is active.
type Controller interface {
	Active() *cache.Manager
}

type Config struct {
	// APIBaseURL is the remote story API; its origin selects NetworkFirstAPI.
	APIBaseURL string
	// AppBaseURL is the origin the shell assets are served from.
	AppBaseURL string
}

type Router struct {
	next      http.RoundTripper
	ctrl      Controller
	apiOrigin string
	appBase   *url.URL
	log       logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	wg sync.WaitGroup
}

func New(next http.RoundTripper, ctrl Controller, cfg Config, log logging.Logger, m *metrics.Metrics) (*Router, error) {
	if next == nil {
		next = http.DefaultTransport
	}
	r := &Router{
		next:    next,
		ctrl:    ctrl,
		log:     log,
		metrics: m,
		now:     time.Now,
	}

	if cfg.APIBaseURL != "" {
		u, err := url.Parse(cfg.APIBaseURL)
		if err != nil {
			return nil, err
		}
		r.apiOrigin = strings.ToLower(u.Scheme + "://" + u.Host)
	}

	app, err := url.Parse(cfg.AppBaseURL)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(app.Path, "/") {
		app.Path += "/"
	}
	r.appBase = app
	return r, nil
}

// AppURL resolves ref against the app base URL.
func (r *Router) AppURL(ref string) string {
	u, err := r.appBase.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// Wait blocks until every background cache write has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

// RoundTrip applies exactly one strategy to req.
func (r *Router) RoundTrip(req *http.Request) (*http.Response, error) {
	strategy := r.Classify(req)

	gen := r.ctrl.Active()
	if gen == nil || strategy == PassThrough {
		r.metrics.RouterOutcome(string(PassThrough), "network")
		return r.next.RoundTrip(req)
	}

	var (
		resp    *http.Response
		outcome string
	)
	switch strategy {
	case NetworkFirstAPI:
		resp, outcome = r.networkFirstAPI(req, gen)
	case CacheFirstImage:
		resp, outcome = r.cacheFirstImage(req, gen)
	case StaleWhileRevalidate:
		resp, outcome = r.staleWhileRevalidate(req, gen)
	default:
		resp, outcome = r.networkFirstDocument(req, gen)
	}
	r.metrics.RouterOutcome(string(strategy), outcome)
	return resp, nil
}

func (r *Router) networkFirstAPI(req *http.Request, gen *cache.Manager) (*http.Response, string) {
	names := gen.Names()
	if resp, err := r.fetchAndStore(req, gen, names.API); err == nil {
		return resp, "network"
	}

	if cached := r.match(req.Context(), gen, names.API, req.URL.String()); cached != nil {
		return cached.Response(req), "cache"
	}
	return synthesize(req, http.StatusServiceUnavailable, "application/json", offlineAPIBody), "offline"
}

func (r *Router) cacheFirstImage(req *http.Request, gen *cache.Manager) (*http.Response, string) {
	names := gen.Names()
	key := req.URL.String()

	if cached := r.matchAny(req.Context(), gen, key, names.Image, names.Static); cached != nil {
		return cached.Response(req), "cache"
	}

	if resp, err := r.fetchAndStore(req, gen, names.Image); err == nil {
		return resp, "network"
	}

	if ph := r.matchAny(req.Context(), gen, r.AppURL(placeholderPath), names.Static, names.Image); ph != nil {
		return ph.Response(req), "placeholder"
	}
	return synthesize(req, http.StatusServiceUnavailable, "text/plain; charset=utf-8", "Offline"), "offline"
}

func (r *Router) staleWhileRevalidate(req *http.Request, gen *cache.Manager) (*http.Response, string) {
	name := gen.Names().Static

	if cached := r.match(req.Context(), gen, name, req.URL.String()); cached != nil {
		bg := req.Clone(context.WithoutCancel(req.Context()))
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			resp, err := r.fetchAndStore(bg, gen, name)
			if err != nil {
				r.log.Debug(bg.Context(), "revalidate failed", "url", bg.URL.String(), "error", err)
				return
			}
			resp.Body.Close()
		}()
		return cached.Response(req), "cache"
	}

	if resp, err := r.fetchAndStore(req, gen, name); err == nil {
		return resp, "network"
	}
	return synthesize(req, http.StatusServiceUnavailable, "text/plain; charset=utf-8", "Offline"), "offline"
}

func (r *Router) networkFirstDocument(req *http.Request, gen *cache.Manager) (*http.Response, string) {
	name := gen.Names().Static

	if resp, err := r.fetchAndStore(req, gen, name); err == nil {
		return resp, "network"
	}

	if cached := r.match(req.Context(), gen, name, req.URL.String()); cached != nil {
		return cached.Response(req), "cache"
	}
	if expectsDocument(req) {
		if root := r.match(req.Context(), gen, name, r.AppURL(rootDocPath)); root != nil {
			return root.Response(req), "shell"
		}
	}
	return synthesize(req, http.StatusServiceUnavailable, "text/plain; charset=utf-8", "Offline"), "offline"
}

// fetchAndStore sends req over the network. A 200 response is snapshotted
// and written to the named cache in the background, provided gen is still
// in control and the cache still exists. Only transport errors
// are returned; any HTTP status counts as a response.
func (r *Router) fetchAndStore(req *http.Request, gen *cache.Manager, cacheName string) (*http.Response, error) {
	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}

	snap, err := models.Snapshot(req.URL.String(), resp, r.now())
	if err != nil {
		return nil, err
	}

	ctx := context.WithoutCancel(req.Context())
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := r.store(ctx, gen, cacheName, snap); err != nil {
			r.log.Warn(ctx, "cache write failed", "cache", cacheName, "url", snap.URL, "error", err)
		}
	}()
	return resp, nil
}

// store writes snap into an existing cache of gen. Writes that outlive
// their generation are dropped: activation has already purged its caches
// and they must not come back.
func (r *Router) store(ctx context.Context, gen *cache.Manager, name string, snap *models.CachedResponse) error {
	if active := r.ctrl.Active(); active == nil || active.Names() != gen.Names() {
		r.log.Debug(ctx, "generation replaced, dropping cache write", "cache", name, "url", snap.URL)
		return nil
	}
	st := gen.Storage()
	ok, err := st.Has(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		r.log.Debug(ctx, "cache gone, dropping cache write", "cache", name, "url", snap.URL)
		return nil
	}
	c, err := st.Open(ctx, name)
	if err != nil {
		return err
	}
	return c.Put(ctx, snap)
}

func (r *Router) matchAny(ctx context.Context, gen *cache.Manager, key string, names ...string) *models.CachedResponse {
	for _, n := range names {
		if e := r.match(ctx, gen, n, key); e != nil {
			return e
		}
	}
	return nil
}

// match looks key up in the named cache without creating it.
func (r *Router) match(ctx context.Context, gen *cache.Manager, name, key string) *models.CachedResponse {
	st := gen.Storage()
	ok, err := st.Has(ctx, name)
	if err != nil || !ok {
		return nil
	}
	c, err := st.Open(ctx, name)
	if err != nil {
		return nil
	}
	e, err := c.Match(ctx, key)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			r.log.Warn(ctx, "cache lookup failed", "cache", name, "url", key, "error", err)
		}
		return nil
	}
	return e
}

func synthesize(req *http.Request, status int, contentType, body string) *http.Response {
	return (&models.CachedResponse{
		URL:    req.URL.String(),
		Status: status,
		Header: http.Header{"Content-Type": []string{contentType}},
		Body:   []byte(body),
	}).Response(req)
}
