package notify

import (
	"context"

	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
)

// Bridge is the single entry point for push messages, sync summaries and
// notification clicks.
type Bridge struct {
	notifier Notifier
	log      logging.Logger
	metrics  *metrics.Metrics
}

func NewBridge(n Notifier, log logging.Logger, m *metrics.Metrics) *Bridge {
	return &Bridge{notifier: n, log: log, metrics: m}
}

// Push shows the notification for an inbound push payload.
func (b *Bridge) Push(ctx context.Context, raw []byte) (Notification, error) {
	n := ParsePush(raw)
	b.metrics.Notification("push")
	return n, b.notifier.Notify(ctx, n)
}

// SyncSummary reports a finished sync batch of n records.
func (b *Bridge) SyncSummary(ctx context.Context, n int) error {
	b.metrics.Notification("sync")
	return b.notifier.Notify(ctx, SyncSummary(n))
}

// Click resolves a notification click to the URL the page should open.
func (b *Bridge) Click(ctx context.Context, action string, n Notification) (string, bool) {
	target, ok := ClickTarget(action, n)
	b.log.Debug(ctx, "notification click", "action", action, "open", target)
	return target, ok
}
