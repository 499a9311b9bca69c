// Package metrics holds the Prometheus collectors of storyd. Every Metrics
// value owns a private registry, so tests can create as many as they need.
// All record methods are safe on a nil *Metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "berbagi"

type Metrics struct {
	registry *prometheus.Registry

	routerRequests  *prometheus.CounterVec
	installedAssets *prometheus.CounterVec
	evictedCaches   prometheus.Counter
	syncRecords     *prometheus.CounterVec
	syncRuns        prometheus.Counter
	notifications   *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		routerRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_requests_total",
			Help:      "Requests handled by the router, partitioned by strategy and outcome.",
		}, []string{"strategy", "outcome"}),
		installedAssets: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "install_assets_total",
			Help:      "Precache attempts during install, partitioned by result.",
		}, []string{"result"}),
		evictedCaches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evicted_caches_total",
			Help:      "Named caches deleted during activation.",
		}),
		syncRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_records_total",
			Help:      "Pending writes replayed by the sync engine, partitioned by result.",
		}, []string{"result"}),
		syncRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync attempts started.",
		}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications shown, partitioned by source.",
		}, []string{"source"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RouterOutcome(strategy, outcome string) {
	if m == nil {
		return
	}
	m.routerRequests.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) AssetInstalled(ok bool) {
	if m == nil {
		return
	}
	m.installedAssets.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) CachesEvicted(n int) {
	if m == nil {
		return
	}
	m.evictedCaches.Add(float64(n))
}

func (m *Metrics) SyncRun() {
	if m == nil {
		return
	}
	m.syncRuns.Inc()
}

func (m *Metrics) SyncRecord(ok bool) {
	if m == nil {
		return
	}
	m.syncRecords.WithLabelValues(result(ok)).Inc()
}

func (m *Metrics) Notification(source string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(source).Inc()
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
