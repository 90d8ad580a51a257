package promo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/coupon"
	"github.com/stripe/stripe-go/v80/promotioncode"
)

const (
	campaignName   = "Cart Recovery Discount"
	codeExpiryDays = 10
)

// Provisioner creates unique one-use Stripe promotion codes for recovery
// stages that enable a discount without supplying one. Every failure
// degrades to "no code": the stage still sends, just without a discount.
type Provisioner struct {
	percentOff int64

	mu       sync.Mutex
	couponID string
}

// NewProvisioner configures the Stripe client. Returns nil when no API key
// is set; callers treat a nil provisioner as "discounts unavailable".
func NewProvisioner(apiKey string, percentOff int64) *Provisioner {
	if apiKey == "" {
		return nil
	}
	stripe.Key = apiKey
	return &Provisioner{percentOff: percentOff}
}

// StageCode returns a fresh single-use discount code restricted to one
// redemption, or "" when provisioning is unavailable or fails.
func (p *Provisioner) StageCode(ctx context.Context, customerEmail string) string {
	if p == nil {
		return ""
	}

	couponID, err := p.campaignCoupon()
	if err != nil {
		slog.Warn("failed to ensure recovery discount coupon", "error", err)
		return ""
	}

	code := fmt.Sprintf("CART%d-%s", p.percentOff, ulid.Make().String()[:8])
	params := &stripe.PromotionCodeParams{
		Coupon:         stripe.String(couponID),
		Code:           stripe.String(code),
		MaxRedemptions: stripe.Int64(1),
		ExpiresAt:      stripe.Int64(time.Now().AddDate(0, 0, codeExpiryDays).Unix()),
	}
	params.Context = ctx

	if _, err := promotioncode.New(params); err != nil {
		slog.Warn("failed to create recovery promotion code", "email", customerEmail, "error", err)
		return ""
	}
	return code
}

// campaignCoupon lazily creates the shared percent-off coupon backing all
// stage codes and caches its ID for the process lifetime.
func (p *Provisioner) campaignCoupon() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.couponID != "" {
		return p.couponID, nil
	}

	params := &stripe.CouponParams{
		Name:       stripe.String(campaignName),
		Duration:   stripe.String(string(stripe.CouponDurationOnce)),
		PercentOff: stripe.Float64(float64(p.percentOff)),
	}
	c, err := coupon.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create coupon: %w", err)
	}
	p.couponID = c.ID
	return p.couponID, nil
}
