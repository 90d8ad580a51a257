package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Order is a persisted order row. Payload holds the original confirmation
// input so sends can be replayed; Metadata carries delivery outcome fields.
type Order struct {
	ID            string
	OrgID         string
	OrderNumber   string
	CustomerEmail string
	Payload       json.RawMessage
	Metadata      map[string]any
	CreatedAt     time.Time
}

type OrderStore struct {
	db *sql.DB
}

func (s *OrderStore) Insert(ctx context.Context, o Order) error {
	metadata := o.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal order metadata: %w", err)
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, org_id, order_number, customer_email, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.OrgID, o.OrderNumber, o.CustomerEmail, string(o.Payload), string(metadataJSON), createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert order %q: %w", o.ID, err)
	}
	return nil
}

func (s *OrderStore) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	var payload, metadata sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT id, org_id, order_number, customer_email, payload, metadata, created_at
		FROM orders WHERE id = ?`, id).
		Scan(&o.ID, &o.OrgID, &o.OrderNumber, &o.CustomerEmail, &payload, &metadata, &o.CreatedAt)
	if err != nil {
		return Order{}, fmt.Errorf("failed to get order %q: %w", id, err)
	}
	if payload.Valid {
		o.Payload = json.RawMessage(payload.String)
	}
	o.Metadata = map[string]any{}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &o.Metadata); err != nil {
			return Order{}, fmt.Errorf("failed to decode metadata for order %q: %w", id, err)
		}
	}
	return o, nil
}

// GetMetadata returns the current metadata map for an order. A missing or
// empty column yields an empty map, never nil.
func (s *OrderStore) GetMetadata(ctx context.Context, id string) (map[string]any, error) {
	var metadata sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT metadata FROM orders WHERE id = ?`, id).Scan(&metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata for order %q: %w", id, err)
	}
	out := map[string]any{}
	if metadata.Valid && metadata.String != "" {
		if err := json.Unmarshal([]byte(metadata.String), &out); err != nil {
			return nil, fmt.Errorf("failed to decode metadata for order %q: %w", id, err)
		}
	}
	return out, nil
}

// PutMetadata replaces the metadata column for an order.
func (s *OrderStore) PutMetadata(ctx context.Context, id string, metadata map[string]any) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata for order %q: %w", id, err)
	}
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET metadata = ? WHERE id = ?`, string(metadataJSON), id)
	if err != nil {
		return fmt.Errorf("failed to update metadata for order %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("order %q not found", id)
	}
	return nil
}
