package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Cart lifecycle statuses. The recovery sweep moves carts forward through
// the notified statuses; recovered and expired are terminal.
const (
	CartStatusAbandoned = "abandoned"
	CartStatusNotified1 = "notified_1"
	CartStatusNotified2 = "notified_2"
	CartStatusNotified3 = "notified_3"
	CartStatusRecovered = "recovered"
	CartStatusExpired   = "expired"
)

type AbandonedCart struct {
	ID                string
	OrgID             string
	CustomerEmail     string
	FirstName         string
	EventName         string
	EventSlug         string
	SubtotalCents     int64
	Currency          string
	RecoveryToken     string
	Status            string
	NotificationCount int
	NotifiedAt        sql.NullTime
	CreatedAt         time.Time
}

type CartItem struct {
	ID             string
	CartID         string
	Name           string
	Quantity       int64
	UnitPriceCents int64
}

type RecoveryAttempt struct {
	ID           string
	CartID       string
	Stage        int
	EmailSubject string
	Status       string
	SentAt       time.Time
}

type CartStore struct {
	db *sql.DB
}

const cartColumns = `id, org_id, customer_email, first_name, event_name, event_slug,
	subtotal_cents, currency, recovery_token, status, notification_count, notified_at, created_at`

func scanCart(row interface{ Scan(...any) error }) (AbandonedCart, error) {
	var c AbandonedCart
	var firstName sql.NullString
	err := row.Scan(&c.ID, &c.OrgID, &c.CustomerEmail, &firstName, &c.EventName, &c.EventSlug,
		&c.SubtotalCents, &c.Currency, &c.RecoveryToken, &c.Status, &c.NotificationCount,
		&c.NotifiedAt, &c.CreatedAt)
	if err != nil {
		return AbandonedCart{}, err
	}
	c.FirstName = firstName.String
	return c, nil
}

func (s *CartStore) Insert(ctx context.Context, c AbandonedCart) error {
	status := c.Status
	if status == "" {
		status = CartStatusAbandoned
	}
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO abandoned_carts (`+cartColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OrgID, c.CustomerEmail, sql.NullString{String: c.FirstName, Valid: c.FirstName != ""},
		c.EventName, c.EventSlug, c.SubtotalCents, c.Currency, c.RecoveryToken,
		status, c.NotificationCount, c.NotifiedAt, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert abandoned cart %q: %w", c.ID, err)
	}
	return nil
}

func (s *CartStore) InsertItem(ctx context.Context, item CartItem) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cart_items (id, cart_id, name, quantity, unit_price_cents)
		VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.CartID, item.Name, item.Quantity, item.UnitPriceCents)
	if err != nil {
		return fmt.Errorf("failed to insert cart item %q: %w", item.ID, err)
	}
	return nil
}

func (s *CartStore) Get(ctx context.Context, id string) (AbandonedCart, error) {
	c, err := scanCart(s.db.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM abandoned_carts WHERE id = ?`, id))
	if err != nil {
		return AbandonedCart{}, fmt.Errorf("failed to get abandoned cart %q: %w", id, err)
	}
	return c, nil
}

func (s *CartStore) GetByRecoveryToken(ctx context.Context, token string) (AbandonedCart, error) {
	c, err := scanCart(s.db.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM abandoned_carts WHERE recovery_token = ?`, token))
	if err == sql.ErrNoRows {
		return AbandonedCart{}, err
	}
	if err != nil {
		return AbandonedCart{}, fmt.Errorf("failed to get cart by recovery token: %w", err)
	}
	return c, nil
}

// ListRecoverable returns carts still in an abandoned-family status, i.e.
// those the recovery sweep may act on.
func (s *CartStore) ListRecoverable(ctx context.Context) ([]AbandonedCart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cartColumns+` FROM abandoned_carts
		WHERE status IN (?, ?, ?, ?)
		ORDER BY created_at`,
		CartStatusAbandoned, CartStatusNotified1, CartStatusNotified2, CartStatusNotified3)
	if err != nil {
		return nil, fmt.Errorf("failed to list recoverable carts: %w", err)
	}
	defer rows.Close()

	var carts []AbandonedCart
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan abandoned cart: %w", err)
		}
		carts = append(carts, c)
	}
	return carts, rows.Err()
}

func (s *CartStore) Items(ctx context.Context, cartID string) ([]CartItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, cart_id, name, quantity, unit_price_cents FROM cart_items WHERE cart_id = ?`, cartID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items for %q: %w", cartID, err)
	}
	defer rows.Close()

	var items []CartItem
	for rows.Next() {
		var item CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.Name, &item.Quantity, &item.UnitPriceCents); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AdvanceNotification records a successful stage send: bumps
// notification_count, stamps notified_at and moves the status forward.
// Only the sweep calls this, and only after observing a successful send.
func (s *CartStore) AdvanceNotification(ctx context.Context, id string, count int, at time.Time) error {
	status := CartStatusAbandoned
	switch count {
	case 1:
		status = CartStatusNotified1
	case 2:
		status = CartStatusNotified2
	case 3:
		status = CartStatusNotified3
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE abandoned_carts SET notification_count = ?, notified_at = ?, status = ? WHERE id = ?`,
		count, at, status, id)
	if err != nil {
		return fmt.Errorf("failed to advance notification for cart %q: %w", id, err)
	}
	return nil
}

func (s *CartStore) MarkExpired(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE abandoned_carts SET status = ? WHERE id = ?`, CartStatusExpired, id)
	if err != nil {
		return fmt.Errorf("failed to mark cart %q expired: %w", id, err)
	}
	return nil
}

func (s *CartStore) MarkRecovered(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE abandoned_carts SET status = ? WHERE id = ?`, CartStatusRecovered, id)
	if err != nil {
		return fmt.Errorf("failed to mark cart %q recovered: %w", id, err)
	}
	return nil
}

func (s *CartStore) RecordAttempt(ctx context.Context, a RecoveryAttempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO recovery_attempts (id, cart_id, stage, email_subject, status, sent_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.CartID, a.Stage, a.EmailSubject, a.Status, a.SentAt)
	if err != nil {
		return fmt.Errorf("failed to record recovery attempt for cart %q: %w", a.CartID, err)
	}
	return nil
}

func (s *CartStore) Unsubscribe(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO email_unsubscribes (email, unsubscribed_at) VALUES (?, ?)
		ON CONFLICT(email) DO NOTHING`, email, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to unsubscribe %q: %w", email, err)
	}
	return nil
}

func (s *CartStore) IsUnsubscribed(ctx context.Context, email string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM email_unsubscribes WHERE email = ?`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check unsubscribe for %q: %w", email, err)
	}
	return true, nil
}
