package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Storage {
	t.Helper()
	store, cleanup, err := NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return store
}

func TestSettings_GetAndUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	_, found, err := store.Settings.Get(ctx, "org1_email_settings")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Settings.Upsert(ctx, "org1_email_settings", json.RawMessage(`{"from_name":"Acme"}`)))

	value, found, err := store.Settings.Get(ctx, "org1_email_settings")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"from_name":"Acme"}`, string(value))

	// Upsert replaces the existing row.
	require.NoError(t, store.Settings.Upsert(ctx, "org1_email_settings", json.RawMessage(`{"from_name":"Acme Live"}`)))
	value, _, err = store.Settings.Get(ctx, "org1_email_settings")
	require.NoError(t, err)
	assert.JSONEq(t, `{"from_name":"Acme Live"}`, string(value))
}

func TestOrders_InsertAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	order := Order{
		ID:            uuid.New().String(),
		OrgID:         "org1",
		OrderNumber:   "ORD-1042",
		CustomerEmail: gofakeit.Email(),
		Payload:       json.RawMessage(`{"order":{"number":"ORD-1042"}}`),
	}
	require.NoError(t, store.Orders.Insert(ctx, order))

	got, err := store.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.CustomerEmail, got.CustomerEmail)
	assert.JSONEq(t, string(order.Payload), string(got.Payload))
	assert.NotNil(t, got.Metadata)
	assert.Empty(t, got.Metadata)
}

func TestOrders_MetadataRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	order := Order{ID: uuid.New().String(), OrgID: "org1", OrderNumber: "ORD-1", CustomerEmail: gofakeit.Email()}
	require.NoError(t, store.Orders.Insert(ctx, order))

	metadata, err := store.Orders.GetMetadata(ctx, order.ID)
	require.NoError(t, err)
	assert.Empty(t, metadata)

	require.NoError(t, store.Orders.PutMetadata(ctx, order.ID, map[string]any{
		"email_sent": true,
		"email_to":   "buyer@example.com",
	}))

	metadata, err = store.Orders.GetMetadata(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, true, metadata["email_sent"])
	assert.Equal(t, "buyer@example.com", metadata["email_to"])
}

func TestOrders_PutMetadataMissingOrder(t *testing.T) {
	store := newStore(t)

	err := store.Orders.PutMetadata(context.Background(), "no-such-order", map[string]any{"email_sent": true})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func insertCart(t *testing.T, store *Storage, cart AbandonedCart) AbandonedCart {
	t.Helper()
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if cart.OrgID == "" {
		cart.OrgID = "org1"
	}
	if cart.CustomerEmail == "" {
		cart.CustomerEmail = gofakeit.Email()
	}
	if cart.RecoveryToken == "" {
		cart.RecoveryToken = uuid.New().String()
	}
	require.NoError(t, store.Carts.Insert(context.Background(), cart))
	return cart
}

func TestCarts_InsertAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cart := insertCart(t, store, AbandonedCart{
		FirstName:     "Sam",
		EventName:     "Summer Fest",
		EventSlug:     "summer-fest",
		SubtotalCents: 5000,
		Currency:      "USD",
	})

	got, err := store.Carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusAbandoned, got.Status)
	assert.Equal(t, "Sam", got.FirstName)
	assert.Equal(t, 0, got.NotificationCount)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCarts_GetByRecoveryToken(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cart := insertCart(t, store, AbandonedCart{RecoveryToken: "tok-abc"})

	got, err := store.Carts.GetByRecoveryToken(ctx, "tok-abc")
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)

	_, err = store.Carts.GetByRecoveryToken(ctx, "tok-missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCarts_ItemsRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cart := insertCart(t, store, AbandonedCart{})
	require.NoError(t, store.Carts.InsertItem(ctx, CartItem{
		ID: uuid.New().String(), CartID: cart.ID, Name: "GA Ticket", Quantity: 2, UnitPriceCents: 2500,
	}))

	items, err := store.Carts.Items(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "GA Ticket", items[0].Name)
	assert.Equal(t, int64(2), items[0].Quantity)
}

func TestCarts_ListRecoverableExcludesTerminalStatuses(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	active := insertCart(t, store, AbandonedCart{CreatedAt: time.Now().UTC().Add(-2 * time.Hour)})
	notified := insertCart(t, store, AbandonedCart{Status: CartStatusNotified2, CreatedAt: time.Now().UTC().Add(-time.Hour)})
	recovered := insertCart(t, store, AbandonedCart{})
	expired := insertCart(t, store, AbandonedCart{})
	require.NoError(t, store.Carts.MarkRecovered(ctx, recovered.ID))
	require.NoError(t, store.Carts.MarkExpired(ctx, expired.ID))

	carts, err := store.Carts.ListRecoverable(ctx)
	require.NoError(t, err)

	ids := make([]string, 0, len(carts))
	for _, c := range carts {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{active.ID, notified.ID}, ids)
}

func TestCarts_AdvanceNotification(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cart := insertCart(t, store, AbandonedCart{})
	at := time.Now().UTC()

	require.NoError(t, store.Carts.AdvanceNotification(ctx, cart.ID, 1, at))
	got, err := store.Carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusNotified1, got.Status)
	assert.Equal(t, 1, got.NotificationCount)
	assert.True(t, got.NotifiedAt.Valid)

	require.NoError(t, store.Carts.AdvanceNotification(ctx, cart.ID, 3, at))
	got, err = store.Carts.Get(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, CartStatusNotified3, got.Status)
}

func TestCarts_RecordAttempt(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	cart := insertCart(t, store, AbandonedCart{})

	err := store.Carts.RecordAttempt(ctx, RecoveryAttempt{
		ID:           uuid.New().String(),
		CartID:       cart.ID,
		Stage:        1,
		EmailSubject: "You left something in your cart",
		Status:       "sent",
		SentAt:       time.Now().UTC(),
	})
	assert.NoError(t, err)
}

func TestCarts_UnsubscribeIsIdempotent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	address := gofakeit.Email()

	unsubscribed, err := store.Carts.IsUnsubscribed(ctx, address)
	require.NoError(t, err)
	assert.False(t, unsubscribed)

	require.NoError(t, store.Carts.Unsubscribe(ctx, address))
	require.NoError(t, store.Carts.Unsubscribe(ctx, address))

	unsubscribed, err = store.Carts.IsUnsubscribed(ctx, address)
	require.NoError(t, err)
	assert.True(t, unsubscribed)
}
