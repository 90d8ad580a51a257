package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stubwire/stubwire/internal/cartrecovery"
	"github.com/stubwire/stubwire/internal/promo"
	"github.com/stubwire/stubwire/storage"
)

// SweepInterval is how often due carts are evaluated.
const SweepInterval = 5 * time.Minute

// CartStore is the slice of storage the sweep needs.
type CartStore interface {
	ListRecoverable(ctx context.Context) ([]storage.AbandonedCart, error)
	Items(ctx context.Context, cartID string) ([]storage.CartItem, error)
	AdvanceNotification(ctx context.Context, id string, count int, at time.Time) error
	MarkExpired(ctx context.Context, id string) error
	IsUnsubscribed(ctx context.Context, email string) (bool, error)
	RecordAttempt(ctx context.Context, a storage.RecoveryAttempt) error
}

// Orchestrator sends one recovery email for one due stage.
type Orchestrator interface {
	Send(ctx context.Context, in cartrecovery.Input, step cartrecovery.StepConfig) bool
}

// RecoverySweeper is the scheduler side of cart recovery: it alone decides
// when a cart is due and it alone mutates cart lifecycle state, strictly
// after observing a successful send. The orchestrator stays idempotent
// from its perspective.
type RecoverySweeper struct {
	store    CartStore
	orch     Orchestrator
	promos   *promo.Provisioner // nil when discounts are unavailable
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool
	now      func() time.Time
}

func NewRecoverySweeper(store CartStore, orch Orchestrator, promos *promo.Provisioner) *RecoverySweeper {
	return &RecoverySweeper{
		store:    store,
		orch:     orch,
		promos:   promos,
		interval: SweepInterval,
		done:     make(chan bool),
		now:      time.Now,
	}
}

// Start begins the periodic sweep. Runs one pass immediately.
func (s *RecoverySweeper) Start(ctx context.Context) {
	slog.Info("starting cart recovery sweeper", "interval", s.interval)

	s.Sweep(ctx)
	s.ticker = time.NewTicker(s.interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				s.Sweep(ctx)
			case <-s.done:
				slog.Info("cart recovery sweeper stopped")
				return
			}
		}
	}()
}

func (s *RecoverySweeper) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
}

// Sweep evaluates every cart still in an abandoned-family status and sends
// at most one stage email per cart per pass. Returns the number of emails
// sent.
func (s *RecoverySweeper) Sweep(ctx context.Context) int {
	carts, err := s.store.ListRecoverable(ctx)
	if err != nil {
		slog.Error("failed to list recoverable carts", "error", err)
		return 0
	}

	now := s.now()
	sent := 0
	for _, cart := range carts {
		if cartrecovery.IsExpired(cart.CreatedAt, now) {
			if err := s.store.MarkExpired(ctx, cart.ID); err != nil {
				slog.Error("failed to expire cart", "cart_id", cart.ID, "error", err)
			}
			continue
		}

		stage, due := cartrecovery.EligibleStage(cart.CreatedAt, cart.NotificationCount, now)
		if !due {
			continue
		}

		unsubscribed, err := s.store.IsUnsubscribed(ctx, cart.CustomerEmail)
		if err != nil {
			slog.Error("failed to check unsubscribe state", "cart_id", cart.ID, "error", err)
			continue
		}
		if unsubscribed {
			continue
		}

		if s.sendStage(ctx, cart, stage) {
			sent++
		}
	}

	if sent > 0 {
		slog.Info("cart recovery sweep complete", "carts", len(carts), "sent", sent)
	} else {
		slog.Debug("cart recovery sweep complete", "carts", len(carts), "sent", sent)
	}
	return sent
}

func (s *RecoverySweeper) sendStage(ctx context.Context, cart storage.AbandonedCart, stage cartrecovery.Stage) bool {
	items, err := s.store.Items(ctx, cart.ID)
	if err != nil {
		slog.Error("failed to load cart items", "cart_id", cart.ID, "error", err)
		return false
	}

	step := s.stageStep(ctx, cart, stage)
	in := cartrecovery.Input{
		OrgID:         cart.OrgID,
		CartID:        cart.ID,
		Email:         cart.CustomerEmail,
		FirstName:     cart.FirstName,
		EventName:     cart.EventName,
		EventSlug:     cart.EventSlug,
		Items:         recoveryItems(items),
		SubtotalCents: cart.SubtotalCents,
		Currency:      cart.Currency,
		RecoveryToken: cart.RecoveryToken,
	}

	ok := s.orch.Send(ctx, in, step)

	status := "sent"
	if !ok {
		status = "failed"
	}
	if err := s.store.RecordAttempt(ctx, storage.RecoveryAttempt{
		ID:           uuid.New().String(),
		CartID:       cart.ID,
		Stage:        int(stage),
		EmailSubject: step.Subject,
		Status:       status,
		SentAt:       s.now(),
	}); err != nil {
		slog.Error("failed to record recovery attempt", "cart_id", cart.ID, "error", err)
	}

	if !ok {
		return false
	}

	if err := s.store.AdvanceNotification(ctx, cart.ID, int(stage), s.now()); err != nil {
		slog.Error("failed to advance cart notification state", "cart_id", cart.ID, "error", err)
	}
	slog.Info("sent recovery email", "cart_id", cart.ID, "email", cart.CustomerEmail, "stage", stage.String())
	return true
}

// stageStep builds the per-stage copy. Later stages sweeten the pitch with
// a provisioned one-use discount code when Stripe is configured.
func (s *RecoverySweeper) stageStep(ctx context.Context, cart storage.AbandonedCart, stage cartrecovery.Stage) cartrecovery.StepConfig {
	switch stage {
	case cartrecovery.Stage1:
		return cartrecovery.StepConfig{
			Subject:     "You left something in your cart",
			PreviewText: "Your tickets are still available",
			CTALabel:    "Complete your order",
		}
	case cartrecovery.Stage2:
		step := cartrecovery.StepConfig{
			Subject:     "Still thinking it over?",
			PreviewText: "Your tickets are waiting for you",
			CTALabel:    "Finish checkout",
		}
		if code := s.promos.StageCode(ctx, cart.CustomerEmail); code != "" {
			step.IncludeDiscount = true
			step.DiscountCode = code
			step.DiscountLabel = "Here's a little something to help you decide:"
		}
		return step
	default:
		step := cartrecovery.StepConfig{
			Subject:     "Last chance to get your tickets",
			PreviewText: "Your cart expires soon",
			CTALabel:    "Get my tickets",
		}
		if code := s.promos.StageCode(ctx, cart.CustomerEmail); code != "" {
			step.IncludeDiscount = true
			step.DiscountCode = code
			step.DiscountLabel = "Use this code before it expires:"
		}
		return step
	}
}

func recoveryItems(items []storage.CartItem) []cartrecovery.Item {
	out := make([]cartrecovery.Item, 0, len(items))
	for _, item := range items {
		out = append(out, cartrecovery.Item{
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return out
}
