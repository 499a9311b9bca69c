// Package syncer replays stories created offline once the API is reachable
// again. Triggers are queued through Register and consumed one at a time by
// Run; each attempt drains the outbox sequentially.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/api"
	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/models"
)

// State of the engine.
type State string

const (
	StateIdle      State = "idle"
	StateDraining  State = "draining"
	StateReplaying State = "replaying"
)

// Outbox is the part of the durable store the engine needs.
type Outbox interface {
	ListUnsyncedWrites(ctx context.Context) ([]*models.PendingWrite, error)
	DeletePendingWrite(ctx context.Context, id int64) error
	MarkSynced(ctx context.Context, id int64) error
}

// Uploader posts a story to the remote API.
type Uploader interface {
	AddStory(ctx context.Context, token string, s api.NewStory) error
}

// Summarizer is told once per batch how many records it contained.
type Summarizer interface {
	SyncSummary(ctx context.Context, n int) error
}

// Result summarizes one sync attempt. Total is the batch size at start.
type Result struct {
	Total     int `json:"total"`
	Committed int `json:"committed"`
	Failed    int `json:"failed"`
}

type Status struct {
	State   State     `json:"state"`
	LastRun time.Time `json:"lastRun,omitzero"`
	Last    Result    `json:"last"`
}

type Engine struct {
	outbox   Outbox
	uploader Uploader
	notifier Summarizer
	log      logging.Logger
	metrics  *metrics.Metrics
	now      func() time.Time

	triggers chan struct{}
	run      sync.Mutex

	mu     sync.RWMutex
	status Status
}

func NewEngine(outbox Outbox, uploader Uploader, notifier Summarizer, log logging.Logger, m *metrics.Metrics) *Engine {
	return &Engine{
		outbox:   outbox,
		uploader: uploader,
		notifier: notifier,
		log:      log,
		metrics:  m,
		now:      time.Now,
		triggers: make(chan struct{}, 1),
		status:   Status{State: StateIdle},
	}
}

// Register queues a sync for tag. Only the story sync tag is honoured.
// Triggers arriving while one is already queued are merged with it.
func (e *Engine) Register(ctx context.Context, tag string) bool {
	if tag != common.SyncTag {
		e.log.Debug(ctx, "ignoring sync tag", "tag", tag)
		return false
	}
	select {
	case e.triggers <- struct{}{}:
	default:
	}
	return true
}

// Run consumes triggers until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.triggers:
			if _, err := e.RunOnce(ctx); err != nil {
				e.log.Error(ctx, "sync attempt aborted", "error", err)
			}
		}
	}
}

func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.status
}

func (e *Engine) setState(s State) {
	e.mu.Lock()
	e.status.State = s
	e.mu.Unlock()
}

// RunOnce drains the outbox once. Records are replayed one after the other
// with the token captured when they were queued. A rejected record is left
// for the next attempt. The returned error is set only when the outbox
// could not be read; nothing has been mutated then.
func (e *Engine) RunOnce(ctx context.Context) (Result, error) {
	e.run.Lock()
	defer e.run.Unlock()

	e.metrics.SyncRun()
	e.setState(StateDraining)
	defer e.setState(StateIdle)

	pending, err := e.outbox.ListUnsyncedWrites(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{Total: len(pending)}
	if res.Total == 0 {
		e.finish(res)
		return res, nil
	}
	e.log.Info(ctx, "syncing offline stories", "count", res.Total)

	e.setState(StateReplaying)
	for _, p := range pending {
		if e.replay(ctx, p) {
			res.Committed++
		} else {
			res.Failed++
		}
	}

	if err := e.notifier.SyncSummary(ctx, res.Total); err != nil {
		e.log.Warn(ctx, "sync summary not delivered", "error", err)
	}
	e.finish(res)
	e.log.Info(ctx, "sync finished", "committed", res.Committed, "failed", res.Failed)
	return res, nil
}

func (e *Engine) replay(ctx context.Context, p *models.PendingWrite) bool {
	log := e.log.With("id", p.ID, "user", api.TokenSubject(p.Token))

	err := e.uploader.AddStory(ctx, p.Token, api.NewStory{
		Description: p.Description,
		Photo:       p.Photo,
		PhotoType:   p.PhotoType,
		Lat:         p.Lat,
		Lon:         p.Lon,
	})
	if err != nil {
		log.Warn(ctx, "replay failed, keeping record", "error", err)
		e.metrics.SyncRecord(false)
		return false
	}

	if err := e.outbox.DeletePendingWrite(ctx, p.ID); err != nil {
		// The story is on the server now; it must never be sent again.
		log.Warn(ctx, "delete after replay failed, marking synced", "error", err)
		if err := e.outbox.MarkSynced(ctx, p.ID); err != nil {
			log.Error(ctx, "mark synced failed", "error", err)
		}
	}
	log.Info(ctx, "story synced")
	e.metrics.SyncRecord(true)
	return true
}

func (e *Engine) finish(res Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.status.LastRun = e.now()
	e.status.Last = res
}
