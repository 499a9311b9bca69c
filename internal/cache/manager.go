package cache

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/metrics"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"golang.org/x/sync/errgroup"
)

const defaultInstallConcurrency = 4

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// InstallReport lists which assets were precached and which were skipped.
type InstallReport struct {
	Cache  string
	Cached []string
	Failed []string
}

// Manager installs and activates one cache generation.
type Manager struct {
	storage     Storage
	client      Doer
	version     string
	names       Names
	log         logging.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	concurrency int
}

func NewManager(storage Storage, client Doer, version string, log logging.Logger, m *metrics.Metrics) *Manager {
	return &Manager{
		storage:     storage,
		client:      client,
		version:     version,
		names:       NamesFor(version),
		log:         log.With("version", version),
		metrics:     m,
		now:         time.Now,
		concurrency: defaultInstallConcurrency,
	}
}

func (m *Manager) Version() string  { return m.version }
func (m *Manager) Names() Names     { return m.names }
func (m *Manager) Storage() Storage { return m.storage }

// Install precaches assets into the static cache of this generation. Assets
// that fail to download are logged and skipped. Only a failure to open the
// static cache fails the install.
func (m *Manager) Install(ctx context.Context, assets []string) (*InstallReport, error) {
	static, err := m.storage.Open(ctx, m.names.Static)
	if err != nil {
		m.log.Error(ctx, "failed to open static cache", "cache", m.names.Static, "error", err)
		return nil, fmt.Errorf("%w: %w", common.ErrInstallFailed, err)
	}

	ok := make([]bool, len(assets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency)

	for i, asset := range assets {
		g.Go(func() error {
			if err := m.precache(gctx, static, asset); err != nil {
				m.log.Warn(gctx, "failed to cache asset", "url", asset, "error", err)
				m.metrics.AssetInstalled(false)
				return nil
			}
			ok[i] = true
			m.metrics.AssetInstalled(true)
			return nil
		})
	}
	_ = g.Wait()

	report := &InstallReport{Cache: m.names.Static}
	for i, asset := range assets {
		if ok[i] {
			report.Cached = append(report.Cached, asset)
		} else {
			report.Failed = append(report.Failed, asset)
		}
	}
	m.log.Info(ctx, "install finished", "cached", len(report.Cached), "failed", len(report.Failed))
	return report, nil
}

func (m *Manager) precache(ctx context.Context, c Cache, asset string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	snap, err := models.Snapshot(asset, resp, m.now())
	if err != nil {
		return err
	}
	return c.Put(ctx, snap)
}

// Activate deletes every named cache that does not belong to this
// generation, makes sure the three caches of this generation exist and
// returns the deleted names.
func (m *Manager) Activate(ctx context.Context) ([]string, error) {
	names, err := m.storage.Names(ctx)
	if err != nil {
		return nil, fmt.Errorf("list caches: %w", err)
	}

	var deleted []string
	for _, name := range names {
		if m.names.Has(name) {
			continue
		}
		ok, err := m.storage.Delete(ctx, name)
		if err != nil {
			m.metrics.CachesEvicted(len(deleted))
			return deleted, fmt.Errorf("delete cache %s: %w", name, err)
		}
		if ok {
			deleted = append(deleted, name)
			m.log.Info(ctx, "deleted old cache", "cache", name)
		}
	}
	m.metrics.CachesEvicted(len(deleted))

	if err := m.Ensure(ctx); err != nil {
		return deleted, err
	}
	return deleted, nil
}

// Ensure creates the caches of this generation that do not exist yet.
func (m *Manager) Ensure(ctx context.Context) error {
	for _, name := range m.names.All() {
		if _, err := m.storage.Open(ctx, name); err != nil {
			return fmt.Errorf("open cache %s: %w", name, err)
		}
	}
	return nil
}
