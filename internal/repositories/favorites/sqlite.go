package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/berbagi/internal/common"
	"github.com/dmitrijs2005/berbagi/internal/dbx"
	"github.com/dmitrijs2005/berbagi/internal/models"
)

const selectColumns = `id, name, description, photo_url, lat, lon, created_at, saved_at`

// SQLiteRepository implements Repository on top of a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert adds f. An existing id is reported as common.ErrDuplicateKey and
// leaves the stored row untouched.
func (r *SQLiteRepository) Insert(ctx context.Context, f *models.FavoriteStory) error {
	query := `INSERT INTO favorite_stories (` + selectColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO NOTHING`

	n, err := dbx.ExecAffected(ctx, r.db, query,
		f.ID, f.Name, f.Description, f.PhotoURL, nullFloat(f.Lat), nullFloat(f.Lon),
		f.CreatedAt, f.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("favorite %s: %w", f.ID, common.ErrDuplicateKey)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.FavoriteStory, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM favorite_stories WHERE id = ?`, id)
	f, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM favorite_stories WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return true, nil
}

// GetAll lists every favorite in insertion order.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.FavoriteStory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM favorite_stories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
	}
	defer rows.Close()

	result := make([]models.FavoriteStory, 0)
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes a favorite. A missing id is not an error.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorite_stories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorite_stories`); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM favorite_stories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFavorite(s scanner) (*models.FavoriteStory, error) {
	var (
		f        models.FavoriteStory
		lat, lon sql.NullFloat64
		savedAt  string
	)
	if err := s.Scan(&f.ID, &f.Name, &f.Description, &f.PhotoURL, &lat, &lon, &f.CreatedAt, &savedAt); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		f.Lat, f.Lon = &lat.Float64, &lon.Float64
	}
	t, err := time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return nil, fmt.Errorf("bad saved_at %q: %w", savedAt, err)
	}
	f.SavedAt = t
	return &f, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
