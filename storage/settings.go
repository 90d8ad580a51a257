package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SettingsStore is a key -> JSON blob store. Per-tenant configuration lives
// under "{orgID}_{kind}" keys and media payloads under "media_{key}" keys.
type SettingsStore struct {
	db *sql.DB
}

// Get returns the raw JSON value for key. The second return reports whether
// a row existed.
func (s *SettingsStore) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get setting %q: %w", key, err)
	}
	return json.RawMessage(value), true, nil
}

// Upsert stores value under key, replacing any existing row.
func (s *SettingsStore) Upsert(ctx context.Context, key string, value json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(value), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert setting %q: %w", key, err)
	}
	return nil
}
