// Package httpserver is the HTTP surface of storyd: the control endpoints
// pages use to talk to the worker and the proxy every other request goes
// through.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/dmitrijs2005/berbagi/internal/notify"
	"github.com/dmitrijs2005/berbagi/internal/syncer"
	"github.com/dmitrijs2005/berbagi/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Worker interface {
	HandleMessage(ctx context.Context, msg worker.Message) error
	Status() worker.Status
}

type Syncer interface {
	Register(ctx context.Context, tag string) bool
	Status() syncer.Status
}

type Bridge interface {
	Push(ctx context.Context, raw []byte) (notify.Notification, error)
	Click(ctx context.Context, action string, n notify.Notification) (string, bool)
}

type InfoSource interface {
	Info(ctx context.Context) (*models.StorageInfo, error)
}

// Deps are the collaborators a Server routes to. Hub and Metrics may be nil.
type Deps struct {
	Proxy      http.RoundTripper
	AppBaseURL string
	Worker     Worker
	Syncer     Syncer
	Bridge     Bridge
	Info       InfoSource
	Hub        http.Handler
	Metrics    *metrics.Metrics
	Log        logging.Logger
}

type Server struct {
	addr    string
	router  chi.Router
	deps    Deps
	appBase *url.URL
	log     logging.Logger
}

func New(addr string, d Deps) (*Server, error) {
	base, err := url.Parse(d.AppBaseURL)
	if err != nil {
		return nil, err
	}
	if !base.IsAbs() {
		return nil, errors.New("app base URL must be absolute")
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	s := &Server{
		addr:    addr,
		deps:    d,
		appBase: base,
		log:     d.Log.With("module", "http_server"),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLog)

	r.Route("/_sw", func(r chi.Router) {
		r.Post("/message", s.handleMessage)
		r.Post("/sync", s.handleSync)
		r.Post("/push", s.handlePush)
		r.Post("/notificationclick", s.handleNotificationClick)
		r.Get("/status", s.handleStatus)
		if s.deps.Hub != nil {
			r.Handle("/ws", s.deps.Hub)
		}
	})
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}
	r.HandleFunc("/*", s.handleProxy)

	s.router = r
}

// ServeHTTP sends absolute-form (proxy) requests straight to the router
// and everything else through the chi routes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.IsAbs() {
		s.handleProxy(w, r)
		return
	}
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting HTTP server", "address", s.addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(logging.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if strings.HasPrefix(r.URL.Path, "/_sw/ws") {
			return
		}
		s.log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
