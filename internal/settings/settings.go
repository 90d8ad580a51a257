package settings

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Setting kinds as stored under "{orgID}_{kind}" keys.
const (
	KindEmail      = "email_settings"
	KindWalletPass = "wallet_pass_settings"
	KindPdfTicket  = "pdf_ticket_settings"
)

// Store is the read side of the key -> JSON settings store.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
}

// EmailSettings is the per-tenant email configuration. Loaded fresh per
// call and immutable once built.
type EmailSettings struct {
	FromName                     string `json:"from_name"`
	FromAddress                  string `json:"from_address"`
	ReplyTo                      string `json:"reply_to"`
	LogoRef                      string `json:"logo_ref"`
	OrderConfirmationEnabled     bool   `json:"order_confirmation_enabled"`
	AbandonedCartRecoveryEnabled bool   `json:"abandoned_cart_recovery_enabled"`
}

func DefaultEmailSettings() EmailSettings {
	return EmailSettings{
		FromName:                     "Stubwire Tickets",
		FromAddress:                  "tickets@stubwire.com",
		OrderConfirmationEnabled:     true,
		AbandonedCartRecoveryEnabled: true,
	}
}

type WalletPassSettings struct {
	GoogleWalletEnabled bool   `json:"google_wallet_enabled"`
	AppleWalletEnabled  bool   `json:"apple_wallet_enabled"`
	PassBackgroundColor string `json:"pass_background_color"`
	PassTextColor       string `json:"pass_text_color"`
}

func DefaultWalletPassSettings() WalletPassSettings {
	return WalletPassSettings{
		PassBackgroundColor: "#1a1a2e",
		PassTextColor:       "#ffffff",
	}
}

type PdfTicketSettings struct {
	AccentColor    string `json:"accent_color"`
	FooterText     string `json:"footer_text"`
	LogoRef        string `json:"logo_ref"`
	ShowHolderName bool   `json:"show_holder_name"`
}

func DefaultPdfTicketSettings() PdfTicketSettings {
	return PdfTicketSettings{
		AccentColor:    "#4CAF50",
		FooterText:     "Present this ticket at the entrance.",
		ShowHolderName: true,
	}
}

// Resolver loads per-tenant settings with default-overlay semantics.
// Resolution cannot fail by contract: any store failure, missing row or
// malformed payload yields the kind's documented default verbatim.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

func (r *Resolver) Email(ctx context.Context, orgID string) EmailSettings {
	out := DefaultEmailSettings()
	var patch struct {
		FromName                     *string `json:"from_name"`
		FromAddress                  *string `json:"from_address"`
		ReplyTo                      *string `json:"reply_to"`
		LogoRef                      *string `json:"logo_ref"`
		OrderConfirmationEnabled     *bool   `json:"order_confirmation_enabled"`
		AbandonedCartRecoveryEnabled *bool   `json:"abandoned_cart_recovery_enabled"`
	}
	if !r.load(ctx, orgID, KindEmail, &patch) {
		return out
	}
	if patch.FromName != nil {
		out.FromName = *patch.FromName
	}
	if patch.FromAddress != nil {
		out.FromAddress = *patch.FromAddress
	}
	if patch.ReplyTo != nil {
		out.ReplyTo = *patch.ReplyTo
	}
	if patch.LogoRef != nil {
		out.LogoRef = *patch.LogoRef
	}
	if patch.OrderConfirmationEnabled != nil {
		out.OrderConfirmationEnabled = *patch.OrderConfirmationEnabled
	}
	if patch.AbandonedCartRecoveryEnabled != nil {
		out.AbandonedCartRecoveryEnabled = *patch.AbandonedCartRecoveryEnabled
	}
	return out
}

func (r *Resolver) WalletPass(ctx context.Context, orgID string) WalletPassSettings {
	out := DefaultWalletPassSettings()
	var patch struct {
		GoogleWalletEnabled *bool   `json:"google_wallet_enabled"`
		AppleWalletEnabled  *bool   `json:"apple_wallet_enabled"`
		PassBackgroundColor *string `json:"pass_background_color"`
		PassTextColor       *string `json:"pass_text_color"`
	}
	if !r.load(ctx, orgID, KindWalletPass, &patch) {
		return out
	}
	if patch.GoogleWalletEnabled != nil {
		out.GoogleWalletEnabled = *patch.GoogleWalletEnabled
	}
	if patch.AppleWalletEnabled != nil {
		out.AppleWalletEnabled = *patch.AppleWalletEnabled
	}
	if patch.PassBackgroundColor != nil {
		out.PassBackgroundColor = *patch.PassBackgroundColor
	}
	if patch.PassTextColor != nil {
		out.PassTextColor = *patch.PassTextColor
	}
	return out
}

func (r *Resolver) PdfTicket(ctx context.Context, orgID string) PdfTicketSettings {
	out := DefaultPdfTicketSettings()
	var patch struct {
		AccentColor    *string `json:"accent_color"`
		FooterText     *string `json:"footer_text"`
		LogoRef        *string `json:"logo_ref"`
		ShowHolderName *bool   `json:"show_holder_name"`
	}
	if !r.load(ctx, orgID, KindPdfTicket, &patch) {
		return out
	}
	if patch.AccentColor != nil {
		out.AccentColor = *patch.AccentColor
	}
	if patch.FooterText != nil {
		out.FooterText = *patch.FooterText
	}
	if patch.LogoRef != nil {
		out.LogoRef = *patch.LogoRef
	}
	if patch.ShowHolderName != nil {
		out.ShowHolderName = *patch.ShowHolderName
	}
	return out
}

// load fetches and decodes the stored blob for orgID/kind into patch.
// Returns false when the default should be used as-is. Unknown fields in
// the stored blob are ignored; a blob that fails to decode is treated the
// same as a missing one.
func (r *Resolver) load(ctx context.Context, orgID, kind string, patch any) bool {
	key := orgID + "_" + kind
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		slog.Warn("settings lookup failed, using defaults", "key", key, "error", err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, patch); err != nil {
		slog.Warn("settings payload malformed, using defaults", "key", key, "error", err)
		return false
	}
	return true
}
