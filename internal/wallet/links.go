package wallet

import (
	"context"
	"log/slog"

	"github.com/stubwire/stubwire/internal/settings"
)

// Ticket is the slice of an order's ticket line a pass issuer needs.
type Ticket struct {
	Code       string
	Type       string
	HolderName string
}

// PassIssuer signs and stores a platform-native pass bundle and returns a
// download URL. Issuance may fail; the link builder tolerates that.
type PassIssuer interface {
	IssuePass(ctx context.Context, orderID string, tickets []Ticket) (string, error)
}

// Links holds the wallet URLs that were actually produced. A nil *Links
// means the email should skip the wallet section entirely.
type Links struct {
	GoogleWalletURL string
	AppleWalletURL  string
}

type LinkBuilder struct {
	issuer PassIssuer // may be nil when no signing credentials exist
}

func NewLinkBuilder(issuer PassIssuer) *LinkBuilder {
	return &LinkBuilder{issuer: issuer}
}

// Build produces zero, one or two wallet-pass URLs. The Google pass is
// generated on click, so its deep link is emitted statically with no
// failure mode. The Apple pass is signed synchronously and simply omitted
// on failure; partial wallet support is valid output.
func (b *LinkBuilder) Build(ctx context.Context, orderID string, tickets []Ticket, ws settings.WalletPassSettings, baseURL string) *Links {
	if baseURL == "" {
		return nil
	}
	if !ws.GoogleWalletEnabled && !ws.AppleWalletEnabled {
		return nil
	}

	links := &Links{}
	if ws.GoogleWalletEnabled {
		links.GoogleWalletURL = baseURL + "/api/wallet/google/" + orderID
	}
	if ws.AppleWalletEnabled && b.issuer != nil {
		url, err := b.issuer.IssuePass(ctx, orderID, tickets)
		if err != nil {
			slog.Warn("apple pass issuance failed, omitting wallet link", "order_id", orderID, "error", err)
		} else {
			links.AppleWalletURL = url
		}
	}

	if links.GoogleWalletURL == "" && links.AppleWalletURL == "" {
		return nil
	}
	return links
}
