package cartrecovery

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/stubwire/stubwire/internal/email"
	"github.com/stubwire/stubwire/internal/media"
	"github.com/stubwire/stubwire/internal/settings"
)

// Item is one line of the abandoned cart.
type Item struct {
	Name           string
	Quantity       int64
	UnitPriceCents int64
}

// Input is the normalized view of one cart at one due stage, supplied by
// the sweep.
type Input struct {
	OrgID         string
	CartID        string
	Email         string
	FirstName     string
	EventName     string
	EventSlug     string
	Items         []Item
	SubtotalCents int64
	Currency      string
	RecoveryToken string
}

// StepConfig is the caller-supplied per-stage copy and discount choice.
type StepConfig struct {
	Subject         string
	PreviewText     string
	Greeting        string
	Body            string
	CTALabel        string
	DiscountLabel   string
	IncludeDiscount bool
	DiscountCode    string
}

// Orchestrator builds stage-specific URLs and headers and drives the cart
// recovery variant of the delivery pipeline. It never mutates cart state:
// the calling scheduler advances notification_count only after observing a
// successful send, which keeps this component retriable.
type Orchestrator struct {
	resolver *settings.Resolver
	embedder *media.Embedder
	composer *email.Composer
	executor *email.Executor
	baseURL  string
}

func NewOrchestrator(
	resolver *settings.Resolver,
	embedder *media.Embedder,
	composer *email.Composer,
	executor *email.Executor,
	baseURL string,
) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		embedder: embedder,
		composer: composer,
		executor: executor,
		baseURL:  baseURL,
	}
}

// Send delivers the recovery email for one (cart, due stage). The boolean
// result is the scheduler's signal to advance the cart; false means "do
// not advance", whatever the cause.
func (o *Orchestrator) Send(ctx context.Context, in Input, step StepConfig) bool {
	log := slog.With("org_id", in.OrgID, "cart_id", in.CartID)

	emailSettings := o.resolver.Email(ctx, in.OrgID)
	if !emailSettings.AbandonedCartRecoveryEnabled {
		log.Info("cart recovery emails disabled for tenant, skipping")
		return false
	}

	emailLogo := o.embedder.EmbedLogo(ctx, emailSettings.LogoRef)
	logoURL := ""
	if emailLogo != nil {
		logoURL = emailLogo.CIDRef()
	} else if emailSettings.LogoRef != "" {
		logoURL = o.baseURL + emailSettings.LogoRef
	}

	discountCode := ""
	if step.IncludeDiscount && step.DiscountCode != "" {
		discountCode = step.DiscountCode
	}

	items := make([]email.CartLine, 0, len(in.Items))
	for _, item := range in.Items {
		items = append(items, email.CartLine{
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}

	content, err := o.composer.CartRecovery(emailSettings, email.CartEmailData{
		FirstName:      in.FirstName,
		EventName:      in.EventName,
		Items:          items,
		SubtotalCents:  in.SubtotalCents,
		Currency:       in.Currency,
		RecoveryURL:    o.recoveryURL(in, step),
		UnsubscribeURL: o.unsubscribeURL(in.RecoveryToken),
		LogoURL:        logoURL,
		Subject:        step.Subject,
		PreviewText:    step.PreviewText,
		Greeting:       step.Greeting,
		Body:           step.Body,
		CTALabel:       step.CTALabel,
		DiscountLabel:  step.DiscountLabel,
		DiscountCode:   discountCode,
	})
	if err != nil {
		log.Error("failed to compose cart recovery email", "error", err)
		return false
	}

	msg := &email.Message{
		From:     emailSettings.FromAddress,
		FromName: emailSettings.FromName,
		ReplyTo:  emailSettings.ReplyTo,
		To:       in.Email,
		Subject:  content.Subject,
		HTML:     content.HTML,
		Text:     content.Text,
		// One-click unsubscribe headers so compliant mail clients can
		// offer it without opening the email.
		Headers: map[string]string{
			"List-Unsubscribe":      "<" + o.unsubscribeURL(in.RecoveryToken) + ">",
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		},
	}

	if emailLogo != nil {
		msg.Attachments = []email.Attachment{{
			Filename:    "logo",
			Content:     emailLogo.Bytes,
			ContentType: emailLogo.MIMEType,
			ContentID:   emailLogo.ContentID,
			Inline:      true,
		}}
	}

	outcome := o.executor.Send(ctx, msg)
	if !outcome.Sent {
		log.Warn("cart recovery send failed", "reason", outcome.Reason, "attempts", outcome.Attempts)
	}
	return outcome.Sent
}

// recoveryURL is the checkout-restore URL keyed by the cart's recovery
// token, with a discount parameter iff the stage both enables discounts
// and supplies a code. A cart with zero items (email captured before any
// item was added) links to the event page instead: there is nothing to
// restore.
func (o *Orchestrator) recoveryURL(in Input, step StepConfig) string {
	if len(in.Items) == 0 {
		return o.baseURL + "/events/" + in.EventSlug
	}
	u := o.baseURL + "/checkout?restore=" + url.QueryEscape(in.RecoveryToken)
	if step.IncludeDiscount && step.DiscountCode != "" {
		u += "&discount=" + url.QueryEscape(step.DiscountCode)
	}
	return u
}

func (o *Orchestrator) unsubscribeURL(token string) string {
	return o.baseURL + "/api/cart-recovery/unsubscribe?token=" + url.QueryEscape(token)
}
