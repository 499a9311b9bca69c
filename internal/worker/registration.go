// Package worker drives the install → waiting → active lifecycle of cache
// generations. The active generation is what the router consults on every
// request; its version is persisted so a restart resumes it.
package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/berbagi/internal/cache"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/repositories/metadata"
)

// Message is a control message posted by a page.
type Message struct {
	Type string `json:"type"`
}

// Status describes the generations known to a Registration.
type Status struct {
	Active  string `json:"active,omitempty"`
	Waiting string `json:"waiting,omitempty"`
}

type Options struct {
	// SkipWaiting activates a freshly installed generation at once instead
	// of waiting for a skip-waiting message.
	SkipWaiting bool
}

type Registration struct {
	storage cache.Storage
	client  cache.Doer
	meta    metadata.Repository
	log     logging.Logger
	metrics *metrics.Metrics
	opts    Options

	// lifecycle serializes Start and HandleMessage.
	lifecycle sync.Mutex

	mu      sync.RWMutex
	active  *cache.Manager
	waiting *cache.Manager
}

func NewRegistration(storage cache.Storage, client cache.Doer, meta metadata.Repository, log logging.Logger, m *metrics.Metrics, opts Options) *Registration {
	return &Registration{
		storage: storage,
		client:  client,
		meta:    meta,
		log:     log,
		metrics: m,
		opts:    opts,
	}
}

// Active returns the generation in control, or nil.
func (r *Registration) Active() *cache.Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

func (r *Registration) Waiting() *cache.Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.waiting
}

func (r *Registration) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var s Status
	if r.active != nil {
		s.Active = r.active.Version()
	}
	if r.waiting != nil {
		s.Waiting = r.waiting.Version()
	}
	return s
}

func (r *Registration) manager(version string) *cache.Manager {
	return cache.NewManager(r.storage, r.client, version, r.log, r.metrics)
}

// Start registers generation version. When version is already the persisted
// active generation it only reactivates it. Otherwise the new generation is
// installed; an install failure keeps the previous generation in control.
func (r *Registration) Start(ctx context.Context, version string, assets []string) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	current, err := r.meta.GetString(ctx, common.MetaActiveVersion)
	if err != nil {
		return fmt.Errorf("read active version: %w", err)
	}

	if current == version {
		r.log.Info(ctx, "resuming active generation", "version", version)
		return r.promote(ctx, r.manager(version))
	}

	if current != "" && r.Active() == nil {
		prev := r.manager(current)
		if err := prev.Ensure(ctx); err != nil {
			r.log.Warn(ctx, "previous generation caches unavailable", "version", current, "error", err)
		}
		r.mu.Lock()
		r.active = prev
		r.mu.Unlock()
	}

	next := r.manager(version)
	report, err := next.Install(ctx, assets)
	if err != nil {
		r.log.Error(ctx, "install failed, previous generation stays in control",
			"version", version, "previous", current, "error", err)
		return err
	}
	r.log.Info(ctx, "installed generation", "version", version,
		"cached", len(report.Cached), "failed", len(report.Failed))

	if r.Active() == nil || r.opts.SkipWaiting {
		return r.promote(ctx, next)
	}

	r.mu.Lock()
	r.waiting = next
	r.mu.Unlock()
	r.log.Info(ctx, "generation waiting", "version", version)
	return nil
}

// HandleMessage processes a control message. Only skip-waiting is
// understood; anything else is ignored.
func (r *Registration) HandleMessage(ctx context.Context, msg Message) error {
	if !isSkipWaiting(msg.Type) {
		r.log.Debug(ctx, "ignoring message", "type", msg.Type)
		return nil
	}

	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	next := r.Waiting()
	if next == nil {
		return common.ErrNoWaiting
	}
	return r.promote(ctx, next)
}

// promote runs activation to completion and only then hands control to m.
func (r *Registration) promote(ctx context.Context, m *cache.Manager) error {
	deleted, err := m.Activate(ctx)
	if err != nil {
		return fmt.Errorf("activate %s: %w", m.Version(), err)
	}
	if err := r.meta.SetString(ctx, common.MetaActiveVersion, m.Version()); err != nil {
		return fmt.Errorf("persist active version: %w", err)
	}

	r.mu.Lock()
	r.active = m
	if r.waiting != nil && r.waiting.Version() == m.Version() {
		r.waiting = nil
	}
	r.mu.Unlock()

	r.log.Info(ctx, "generation active", "version", m.Version(), "deleted", deleted)
	return nil
}

func isSkipWaiting(t string) bool {
	return t == common.MessageSkipWaiting || strings.EqualFold(t, "skip-waiting")
}
