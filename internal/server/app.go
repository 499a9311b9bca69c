// Package server assembles storyd: the durable store, the cache
// generations, the request router, the sync engine and the HTTP surface.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/cache"
	"github.com/dmitrijs2005/berbagi/internal/config"
	"github.com/dmitrijs2005/berbagi/internal/localstore"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/notify"
	"github.com/dmitrijs2005/berbagi/internal/router"
	"github.com/dmitrijs2005/berbagi/internal/server/httpserver"
	"github.com/dmitrijs2005/berbagi/internal/syncer"
	"github.com/dmitrijs2005/berbagi/internal/worker"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	metrics      *metrics.Metrics
	store        *localstore.Store
	registration *worker.Registration
	router       *router.Router
	engine       *syncer.Engine
	watcher      *syncer.Watcher
	hub          *notify.Hub
	http         *httpserver.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := []localstore.Option{localstore.WithLogger(logger.With("module", "store"))}
	if c.StorePassphrase != "" {
		opts = append(opts, localstore.WithPassphrase(c.StorePassphrase))
	}
	store, err := localstore.Open(ctx, c.DBPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, store)
	if err != nil {
		store.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, store *localstore.Store) (*App, error) {
	m := metrics.New()

	storage, err := NewCacheStorage(ctx, c, store)
	if err != nil {
		return nil, fmt.Errorf("cache storage init error: %w", err)
	}

	// Precache downloads bypass the router so they never read stale entries.
	fetcher := &http.Client{Timeout: c.HTTPTimeout}
	reg := worker.NewRegistration(storage, fetcher, store.Metadata(), logger.With("module", "worker"), m,
		worker.Options{SkipWaiting: c.SkipWaiting})

	rt, err := router.New(http.DefaultTransport, reg, router.Config{APIBaseURL: c.APIBaseURL, AppBaseURL: c.AppBaseURL},
		logger.With("module", "router"), m)
	if err != nil {
		return nil, fmt.Errorf("router init error: %w", err)
	}

	client, err := api.NewRESTClient(c.APIBaseURL, &http.Client{Transport: rt, Timeout: c.HTTPTimeout}, logger.With("module", "api"))
	if err != nil {
		return nil, fmt.Errorf("api client init error: %w", err)
	}

	hub := notify.NewHub(logger.With("module", "hub"))
	bridge := notify.NewBridge(notify.Multi{notify.NewLogNotifier(logger), hub}, logger.With("module", "notify"), m)

	engine := syncer.NewEngine(store, client, bridge, logger.With("module", "sync"), m)
	watcher := syncer.NewWatcher(client, engine, logger.With("module", "watcher"), c.OnlineCheckInterval)

	srv, err := httpserver.New(c.ListenAddr, httpserver.Deps{
		Proxy:      rt,
		AppBaseURL: c.AppBaseURL,
		Worker:     reg,
		Syncer:     engine,
		Bridge:     bridge,
		Info:       store,
		Hub:        hub,
		Metrics:    m,
		Log:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	return &App{
		config:       c,
		logger:       logger,
		metrics:      m,
		store:        store,
		registration: reg,
		router:       rt,
		engine:       engine,
		watcher:      watcher,
		hub:          hub,
		http:         srv,
	}, nil
}

// NewCacheStorage builds the cache backend selected by c.CacheBackend.
func NewCacheStorage(ctx context.Context, c *config.Config, store *localstore.Store) (cache.Storage, error) {
	switch c.CacheBackend {
	case "", config.BackendSQLite:
		return cache.NewSQLiteStorage(store.DB()), nil
	case config.BackendMemory:
		return cache.NewMemoryStorage(), nil
	case config.BackendS3:
		client, err := cache.NewS3Client(ctx, cache.S3Options{
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return cache.NewS3Storage(client, c.S3Bucket, c.S3Prefix), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", c.CacheBackend)
	}
}

// PrecacheURLs resolves the configured assets against the app origin.
func (app *App) PrecacheURLs() []string {
	urls := make([]string, 0, len(app.config.PrecacheAssets))
	for _, a := range app.config.PrecacheAssets {
		urls = append(urls, app.router.AppURL(a))
	}
	return urls
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run installs the configured generation and serves until a signal arrives
// or one of the loops fails. A failed install is logged; the previous
// generation, if any, stays in control.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "cache_version", app.config.CacheVersion)
	app.initSignalHandler(cancelFunc)

	if err := app.registration.Start(ctx, app.config.CacheVersion, app.PrecacheURLs()); err != nil {
		app.logger.Error(ctx, "worker install failed", "error", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.http.Run(ctx) })
	g.Go(func() error { return app.engine.Run(ctx) })
	g.Go(func() error { return app.watcher.Run(ctx) })

	err := g.Wait()
	app.router.Wait()
	app.hub.Close()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (app *App) Close() error {
	return app.store.Close()
}
