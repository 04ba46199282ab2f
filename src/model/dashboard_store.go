package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrDashboardNotFound is returned by Load when no blob is stored under the key.
var ErrDashboardNotFound = errors.New("dashboard not found")

// DashboardStore persists one opaque JSON blob per storage key.
type DashboardStore struct {
	db *sql.DB
}

func NewDashboardStore(db *sql.DB) *DashboardStore {
	return &DashboardStore{db: db}
}

// Load returns the blob stored under key.
func (s *DashboardStore) Load(ctx context.Context, key string) ([]byte, error) {
	var blob string
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM dashboards WHERE storage_key = ?`, key).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDashboardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load dashboard %s: %w", key, err)
	}
	return []byte(blob), nil
}

// Save replaces the blob stored under key.
func (s *DashboardStore) Save(ctx context.Context, key, userID string, blob []byte) error {
	query := `
        INSERT INTO dashboards (storage_key, user_id, blob, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(storage_key) DO UPDATE SET
            blob = excluded.blob,
            updated_at = excluded.updated_at;
    `
	if _, err := s.db.ExecContext(ctx, query, key, userID, string(blob), time.Now()); err != nil {
		return fmt.Errorf("save dashboard %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key. Deleting a missing key is not an error.
func (s *DashboardStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM dashboards WHERE storage_key = ?`, key)
	return err
}
