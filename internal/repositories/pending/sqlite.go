// Package pending stores offline-created stories (the outbox drained by the
// background sync engine) in the local SQLite database.
package pending

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

const selectColumns = `id, description, photo, photo_type, lat, lon, token, created_at, synced, synced_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores p and returns the id assigned by the database.
func (r *SQLiteRepository) Insert(ctx context.Context, p *models.PendingWrite) (int64, error) {
	query := `INSERT INTO offline_stories (description, photo, photo_type, lat, lon, token, created_at, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := r.db.ExecContext(ctx, query,
		p.Description, p.Photo, p.PhotoType, nullFloat(p.Lat), nullFloat(p.Lon), p.Token,
		formatTime(p.CreatedAt), p.Synced)
	if err != nil {
		return 0, fmt.Errorf("failed to insert pending write: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get pending write id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.PendingWrite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM offline_stories WHERE id = ?`, id)
	p, err := scanPending(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.PendingWrite, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM offline_stories ORDER BY id`)
}

// GetUnsynced returns records with synced=0 in insertion order.
func (r *SQLiteRepository) GetUnsynced(ctx context.Context) ([]*models.PendingWrite, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM offline_stories WHERE synced = 0 ORDER BY id`)
}

func (r *SQLiteRepository) list(ctx context.Context, query string) ([]*models.PendingWrite, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending writes: %w", err)
	}
	defer rows.Close()

	var result []*models.PendingWrite
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSynced flags a record as replayed. It expects exactly one row to change.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64, at time.Time) error {
	n, err := dbx.ExecAffected(ctx, r.db,
		`UPDATE offline_stories SET synced = 1, synced_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to mark pending write synced: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("pending write %d: %w", id, common.ErrorNotFound)
	}
	return nil
}

// DeleteByID removes a record. A missing id is not an error.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offline_stories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete pending write: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSynced(ctx context.Context) (int64, error) {
	n, err := dbx.ExecAffected(ctx, r.db, `DELETE FROM offline_stories WHERE synced = 1`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete synced writes: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offline_stories`); err != nil {
		return fmt.Errorf("failed to clear pending writes: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_stories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pending writes: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPending(s scanner) (*models.PendingWrite, error) {
	var (
		p         models.PendingWrite
		lat, lon  sql.NullFloat64
		createdAt string
		syncedAt  sql.NullString
	)
	if err := s.Scan(&p.ID, &p.Description, &p.Photo, &p.PhotoType, &lat, &lon, &p.Token,
		&createdAt, &p.Synced, &syncedAt); err != nil {
		return nil, err
	}
	if lat.Valid && lon.Valid {
		p.Lat, p.Lon = &lat.Float64, &lon.Float64
	}

	var err error
	if p.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	if syncedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, syncedAt.String)
		if err != nil {
			return nil, fmt.Errorf("bad synced_at %q: %w", syncedAt.String, err)
		}
		p.SyncedAt = &t
	}
	return &p, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
