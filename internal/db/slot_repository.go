package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chepyr/go-task-list/internal/storage"
)

// kv_slots works unchanged on SQLite and Postgres
const slotsSchema = `CREATE TABLE IF NOT EXISTS kv_slots (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TIMESTAMP NOT NULL
)`

// SlotRepository stores named string slots in a single table.
type SlotRepository struct {
	db *sql.DB
}

var _ storage.Storage = (*SlotRepository)(nil)

func NewSlotRepository(db *sql.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// Migrate creates the slots table if it does not exist yet.
func (r *SlotRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, slotsSchema); err != nil {
		return fmt.Errorf("failed to create kv_slots table: %w", err)
	}
	return nil
}

func (r *SlotRepository) GetString(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM kv_slots WHERE key = $1`
	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read slot %s: %w", key, err)
	}
	return value, true, nil
}

// SetString replaces the whole slot in one statement.
func (r *SlotRepository) SetString(ctx context.Context, key, value string) error {
	query := `INSERT INTO kv_slots (key, value, updated_at) VALUES ($1, $2, $3)
	 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}
	return nil
}
