package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stubwire/stubwire/internal/notify"
	"github.com/stubwire/stubwire/storage"
)

type NotificationHandler struct {
	storage *storage.Storage
	engine  *notify.Engine
}

func NewNotificationHandler(store *storage.Storage, engine *notify.Engine) *NotificationHandler {
	return &NotificationHandler{storage: store, engine: engine}
}

func (h *NotificationHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleResendConfirmation replays a confirmation send from the persisted
// order payload. The send runs in the background; the result lands in the
// order's metadata like any other send.
func (h *NotificationHandler) HandleResendConfirmation(c echo.Context) error {
	orderID := c.Param("id")

	order, err := h.storage.Orders.Get(c.Request().Context(), orderID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "order not found"})
	}
	if len(order.Payload) == 0 {
		return c.JSON(http.StatusConflict, map[string]string{"error": "order has no stored confirmation payload"})
	}

	var confirmation notify.OrderConfirmation
	if err := json.Unmarshal(order.Payload, &confirmation); err != nil {
		slog.Error("failed to decode order payload", "order_id", orderID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "stored payload is unreadable"})
	}

	orgID := order.OrgID
	go h.engine.SendOrderConfirmation(context.Background(), orgID, confirmation)

	return c.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
}

// HandleUnsubscribe removes an email from cart recovery sends. Supports
// both the browser link and RFC 8058 one-click POSTs.
func (h *NotificationHandler) HandleUnsubscribe(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.String(http.StatusBadRequest, "Invalid unsubscribe link")
	}

	ctx := c.Request().Context()
	cart, err := h.storage.Carts.GetByRecoveryToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.String(http.StatusNotFound, "Invalid or expired unsubscribe link")
		}
		slog.Error("failed to look up cart for unsubscribe", "error", err)
		return c.String(http.StatusInternalServerError, "Failed to process unsubscribe request")
	}

	if err := h.storage.Carts.Unsubscribe(ctx, cart.CustomerEmail); err != nil {
		slog.Error("failed to record unsubscribe", "cart_id", cart.ID, "error", err)
		return c.String(http.StatusInternalServerError, "Failed to process unsubscribe request")
	}

	if c.Request().Method == http.MethodPost {
		return c.NoContent(http.StatusOK)
	}
	return c.HTML(http.StatusOK, unsubscribedPage)
}

const unsubscribedPage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Unsubscribed</title>
    <style>
        body { font-family: -apple-system, sans-serif; max-width: 480px; margin: 60px auto; text-align: center; color: #333; }
        .success { background-color: #e8f5e9; padding: 16px; border-radius: 8px; }
    </style>
</head>
<body>
    <h1>You've been unsubscribed</h1>
    <div class="success">You won't receive any more cart reminders from us.</div>
</body>
</html>`
