package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
)

const pingTimeout = 3 * time.Second

// Pinger checks API reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Registrar accepts sync registrations. *Engine satisfies it.
type Registrar interface {
	Register(ctx context.Context, tag string) bool
}

// Watcher probes the API periodically and registers a story sync every
// time connectivity comes back.
type Watcher struct {
	pinger    Pinger
	registrar Registrar
	log       logging.Logger
	interval  time.Duration
	online    atomic.Bool
}

func NewWatcher(p Pinger, r Registrar, log logging.Logger, interval time.Duration) *Watcher {
	return &Watcher{pinger: p, registrar: r, log: log, interval: interval}
}

func (w *Watcher) Online() bool {
	return w.online.Load()
}

// Run probes once immediately, then every interval, until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check runs one probe. An offline to online transition, including the
// very first successful probe, registers a story sync.
func (w *Watcher) Check(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	err := w.pinger.Ping(pctx)
	cancel()

	if err != nil {
		if w.online.Swap(false) {
			w.log.Info(ctx, "switched to offline mode", "error", err)
		}
		return
	}
	if !w.online.Swap(true) {
		w.log.Info(ctx, "switched to online mode")
		w.registrar.Register(ctx, common.SyncTag)
	}
}
