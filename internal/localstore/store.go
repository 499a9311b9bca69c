// Package localstore is the durable local store: favorited stories, the
// outbox of offline-created stories and the metadata key-value table, all
// kept in one versioned SQLite database.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/cryptox"
	"github.com/dmitrijs2005/berbagi/internal/dbx"
	"github.com/dmitrijs2005/berbagi/internal/filex"
	"github.com/dmitrijs2005/berbagi/internal/logging"
	"github.com/dmitrijs2005/berbagi/internal/models"
	"github.com/dmitrijs2005/berbagi/internal/repositories/favorites"
	"github.com/dmitrijs2005/berbagi/internal/repositories/metadata"
	"github.com/dmitrijs2005/berbagi/internal/repositories/pending"
)

const saltSize = 16

type Store struct {
	db        *sql.DB
	name      string
	favorites favorites.Repository
	pending   pending.Repository
	meta      metadata.Repository
	sealer    *cryptox.Sealer
	log       logging.Logger
	now       func() time.Time
}

type Option func(*options)

type options struct {
	passphrase string
	log        logging.Logger
	now        func() time.Time
}

// WithPassphrase seals token snapshots of pending writes at rest.
func WithPassphrase(p string) Option {
	return func(o *options) { o.passphrase = p }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Open opens the database file at path and returns a ready Store.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if !isMemory(path) {
		if err := filex.EnsureParentDir(path); err != nil {
			return nil, err
		}
	}
	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, db, filepath.Base(path), opts...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an already migrated database.
func New(ctx context.Context, db *sql.DB, name string, opts ...Option) (*Store, error) {
	o := options{now: time.Now, log: logging.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		db:        db,
		name:      name,
		favorites: favorites.NewSQLiteRepository(db),
		pending:   pending.NewSQLiteRepository(db),
		meta:      metadata.NewSQLiteRepository(db),
		log:       o.log,
		now:       o.now,
	}

	if o.passphrase != "" {
		salt, err := s.sealSalt(ctx)
		if err != nil {
			return nil, err
		}
		s.sealer = cryptox.NewSealer(cryptox.DeriveMasterKey([]byte(o.passphrase), salt))
	}
	return s, nil
}

func (s *Store) sealSalt(ctx context.Context) ([]byte, error) {
	salt, err := s.meta.Get(ctx, common.MetaSealSalt)
	if err != nil {
		return nil, err
	}
	if len(salt) > 0 {
		return salt, nil
	}
	salt = common.GenerateRandByteArray(saltSize)
	if salt == nil {
		return nil, fmt.Errorf("generate salt: system rng failed")
	}
	if err := s.meta.Set(ctx, common.MetaSealSalt, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for components sharing the database.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Metadata() metadata.Repository {
	return s.meta
}

// ---- favorites ----

// AddFavorite stores story and stamps its SavedAt.
func (s *Store) AddFavorite(ctx context.Context, story models.FavoriteStory) (*models.FavoriteStory, error) {
	if strings.TrimSpace(story.ID) == "" {
		return nil, fmt.Errorf("favorite id: %w", common.ErrEmptyPayload)
	}
	if (story.Lat == nil) != (story.Lon == nil) {
		return nil, common.ErrInvalidLocation
	}
	story.SavedAt = s.now().UTC()

	if err := s.favorites.Insert(ctx, &story); err != nil {
		return nil, err
	}
	return &story, nil
}

func (s *Store) GetFavorite(ctx context.Context, id string) (*models.FavoriteStory, error) {
	return s.favorites.GetByID(ctx, id)
}

func (s *Store) IsFavorite(ctx context.Context, id string) (bool, error) {
	return s.favorites.Exists(ctx, id)
}

// ListFavorites returns every favorite in insertion order.
func (s *Store) ListFavorites(ctx context.Context) ([]models.FavoriteStory, error) {
	return s.favorites.GetAll(ctx)
}

// SearchFavorites matches query case-insensitively against name and
// description. A blank query matches everything.
func (s *Store) SearchFavorites(ctx context.Context, query string) ([]models.FavoriteStory, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return s.FilterFavorites(ctx, func(f models.FavoriteStory) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(f.Name), q) ||
			strings.Contains(strings.ToLower(f.Description), q)
	})
}

func (s *Store) FilterFavorites(ctx context.Context, keep func(models.FavoriteStory) bool) ([]models.FavoriteStory, error) {
	all, err := s.favorites.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.FavoriteStory, 0, len(all))
	for _, f := range all {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out, nil
}

// SortFavorites returns all favorites ordered by key and direction. Empty
// values default to savedAt, desc. Equal keys keep insertion order.
func (s *Store) SortFavorites(ctx context.Context, key, direction string) ([]models.FavoriteStory, error) {
	cmp, err := favoriteComparator(key)
	if err != nil {
		return nil, err
	}
	switch direction {
	case "":
		direction = models.SortDesc
	case models.SortAsc, models.SortDesc:
	default:
		return nil, fmt.Errorf("direction %q: %w", direction, common.ErrInvalidSortKey)
	}

	all, err := s.favorites.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(all, func(a, b models.FavoriteStory) int {
		if direction == models.SortDesc {
			return cmp(b, a)
		}
		return cmp(a, b)
	})
	return all, nil
}

func favoriteComparator(key string) (func(a, b models.FavoriteStory) int, error) {
	switch key {
	case models.SortByName:
		return func(a, b models.FavoriteStory) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}, nil
	case models.SortByCreatedAt:
		return func(a, b models.FavoriteStory) int {
			return strings.Compare(a.CreatedAt, b.CreatedAt)
		}, nil
	case models.SortBySavedAt, "":
		return func(a, b models.FavoriteStory) int {
			return a.SavedAt.Compare(b.SavedAt)
		}, nil
	default:
		return nil, fmt.Errorf("key %q: %w", key, common.ErrInvalidSortKey)
	}
}

// DeleteFavorite is a no-op when id is unknown.
func (s *Store) DeleteFavorite(ctx context.Context, id string) error {
	return s.favorites.DeleteByID(ctx, id)
}

func (s *Store) ClearFavorites(ctx context.Context) error {
	return s.favorites.Clear(ctx)
}

// ---- pending writes ----

// AddPendingWrite queues p for background replay and returns its id.
func (s *Store) AddPendingWrite(ctx context.Context, p models.PendingWrite) (int64, error) {
	if strings.TrimSpace(p.Description) == "" && len(p.Photo) == 0 {
		return 0, common.ErrEmptyPayload
	}
	if (p.Lat == nil) != (p.Lon == nil) {
		return 0, common.ErrInvalidLocation
	}

	token, err := s.sealer.SealString(p.Token)
	if err != nil {
		return 0, fmt.Errorf("seal token: %w", err)
	}
	p.Token = token
	p.CreatedAt = s.now().UTC()
	p.Synced = false
	p.SyncedAt = nil

	return s.pending.Insert(ctx, &p)
}

func (s *Store) ListPendingWrites(ctx context.Context) ([]*models.PendingWrite, error) {
	items, err := s.pending.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.openTokens(ctx, items, true), nil
}

// ListUnsyncedWrites returns writes not yet replayed, oldest first. Writes
// whose token cannot be unsealed are left in place and skipped.
func (s *Store) ListUnsyncedWrites(ctx context.Context) ([]*models.PendingWrite, error) {
	items, err := s.pending.GetUnsynced(ctx)
	if err != nil {
		return nil, err
	}
	return s.openTokens(ctx, items, false), nil
}

// openTokens unseals token snapshots in place. An unreadable token is
// cleared when keep is set; otherwise its write is dropped from the result.
func (s *Store) openTokens(ctx context.Context, items []*models.PendingWrite, keep bool) []*models.PendingWrite {
	out := items[:0]
	for _, p := range items {
		tok, err := s.sealer.OpenString(p.Token)
		if err != nil {
			s.log.Warn(ctx, "cannot open token of pending write", "id", p.ID, "error", err)
			if !keep {
				continue
			}
			tok = ""
		}
		p.Token = tok
		out = append(out, p)
	}
	return out
}

func (s *Store) MarkSynced(ctx context.Context, id int64) error {
	return s.pending.MarkSynced(ctx, id, s.now().UTC())
}

func (s *Store) DeletePendingWrite(ctx context.Context, id int64) error {
	return s.pending.DeleteByID(ctx, id)
}

// ClearSyncedWrites removes every replayed write in one transaction.
func (s *Store) ClearSyncedWrites(ctx context.Context) (int64, error) {
	var n int64
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		n, err = pending.NewSQLiteRepository(tx).DeleteSynced(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// ClearAll empties favorites and pending writes atomically. Metadata is kept.
func (s *Store) ClearAll(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := favorites.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return pending.NewSQLiteRepository(tx).Clear(ctx)
	})
}

// Info summarizes the contents of the store.
func (s *Store) Info(ctx context.Context) (*models.StorageInfo, error) {
	favs, err := s.favorites.Count(ctx)
	if err != nil {
		return nil, err
	}
	writes, err := s.pending.Count(ctx)
	if err != nil {
		return nil, err
	}
	ver, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("schema version: %w", err)
	}
	return &models.StorageInfo{
		TotalFavorites:      favs,
		TotalOfflineStories: writes,
		DBName:              s.name,
		DBVersion:           ver,
	}, nil
}
