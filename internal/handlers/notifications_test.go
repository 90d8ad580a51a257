package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stubwire/stubwire/internal/email"
	"github.com/stubwire/stubwire/internal/media"
	"github.com/stubwire/stubwire/internal/notify"
	"github.com/stubwire/stubwire/internal/settings"
	"github.com/stubwire/stubwire/internal/ticketpdf"
	"github.com/stubwire/stubwire/internal/wallet"
	"github.com/stubwire/stubwire/storage"
)

func newTestHandler(t *testing.T) (*NotificationHandler, *storage.Storage) {
	t.Helper()
	store, cleanup, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(cleanup)

	resolver := settings.NewResolver(store.Settings)
	embedder := media.NewEmbedder(store.Settings)
	composer := email.NewComposer()
	executor := email.NewExecutor(nil, email.DefaultRetryPolicy())
	engine := notify.NewEngine(
		resolver,
		embedder,
		wallet.NewLinkBuilder(nil),
		email.NewAttachmentBuilder(ticketpdf.NewRenderer()),
		composer,
		executor,
		notify.NewOutcomeRecorder(store.Orders),
		"https://tix.example.com",
	)
	return NewNotificationHandler(store, engine), store
}

func request(handler echo.HandlerFunc, method, target string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestHandleHealth(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := request(handler.HandleHealth, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestHandleResendConfirmation_UnknownOrder(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := request(handler.HandleResendConfirmation, http.MethodPost,
		"/api/orders/missing/resend-confirmation", map[string]string{"id": "missing"})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleResendConfirmation_NoStoredPayload(t *testing.T) {
	handler, store := newTestHandler(t)
	order := storage.Order{ID: uuid.New().String(), OrgID: "org1", OrderNumber: "ORD-1", CustomerEmail: "buyer@example.com"}
	require.NoError(t, store.Orders.Insert(context.Background(), order))

	rec := request(handler.HandleResendConfirmation, http.MethodPost,
		"/api/orders/"+order.ID+"/resend-confirmation", map[string]string{"id": order.ID})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleResendConfirmation_QueuesReplay(t *testing.T) {
	handler, store := newTestHandler(t)
	payload, err := json.Marshal(notify.OrderConfirmation{
		Order:    notify.Order{ID: "ord1", Number: "ORD-1"},
		Customer: notify.Customer{Email: "buyer@example.com"},
	})
	require.NoError(t, err)
	order := storage.Order{ID: "ord1", OrgID: "org1", OrderNumber: "ORD-1", CustomerEmail: "buyer@example.com", Payload: payload}
	require.NoError(t, store.Orders.Insert(context.Background(), order))

	rec := request(handler.HandleResendConfirmation, http.MethodPost,
		"/api/orders/ord1/resend-confirmation", map[string]string{"id": "ord1"})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, rec.Body.String(), "queued")
}

func TestHandleUnsubscribe_MissingToken(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := request(handler.HandleUnsubscribe, http.MethodGet, "/api/cart-recovery/unsubscribe", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleUnsubscribe_UnknownToken(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := request(handler.HandleUnsubscribe, http.MethodGet, "/api/cart-recovery/unsubscribe?token=nope", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUnsubscribe_GetRendersConfirmationPage(t *testing.T) {
	handler, store := newTestHandler(t)
	cart := storage.AbandonedCart{
		ID: uuid.New().String(), OrgID: "org1", CustomerEmail: "buyer@example.com", RecoveryToken: "tok-abc",
	}
	require.NoError(t, store.Carts.Insert(context.Background(), cart))

	rec := request(handler.HandleUnsubscribe, http.MethodGet, "/api/cart-recovery/unsubscribe?token=tok-abc", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsubscribed")

	unsubscribed, err := store.Carts.IsUnsubscribed(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, unsubscribed)
}

func TestHandleUnsubscribe_OneClickPost(t *testing.T) {
	handler, store := newTestHandler(t)
	cart := storage.AbandonedCart{
		ID: uuid.New().String(), OrgID: "org1", CustomerEmail: "oneclick@example.com", RecoveryToken: "tok-xyz",
	}
	require.NoError(t, store.Carts.Insert(context.Background(), cart))

	rec := request(handler.HandleUnsubscribe, http.MethodPost, "/api/cart-recovery/unsubscribe?token=tok-xyz", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	unsubscribed, err := store.Carts.IsUnsubscribed(context.Background(), "oneclick@example.com")
	require.NoError(t, err)
	assert.True(t, unsubscribed)
}
