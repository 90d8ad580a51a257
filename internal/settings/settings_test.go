package settings

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeStore struct {
	values map[string]string
	err    error
}

func (s *fakeStore) Get(_ context.Context, key string) (json.RawMessage, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	value, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	return json.RawMessage(value), true, nil
}

func TestEmail_MissingRowReturnsDefaults(t *testing.T) {
	resolver := NewResolver(&fakeStore{values: map[string]string{}})

	got := resolver.Email(context.Background(), "org1")

	assert.Equal(t, DefaultEmailSettings(), got)
}

func TestEmail_StoreErrorReturnsDefaults(t *testing.T) {
	resolver := NewResolver(&fakeStore{err: errors.New("store unreachable")})

	assert.Equal(t, DefaultEmailSettings(), resolver.Email(context.Background(), "org1"))
	assert.Equal(t, DefaultWalletPassSettings(), resolver.WalletPass(context.Background(), "org1"))
	assert.Equal(t, DefaultPdfTicketSettings(), resolver.PdfTicket(context.Background(), "org1"))
}

func TestEmail_MalformedPayloadReturnsDefaults(t *testing.T) {
	resolver := NewResolver(&fakeStore{values: map[string]string{
		"org1_email_settings": `{"from_name": 42`,
	}})

	assert.Equal(t, DefaultEmailSettings(), resolver.Email(context.Background(), "org1"))
}

func TestEmail_PartialOverlay(t *testing.T) {
	resolver := NewResolver(&fakeStore{values: map[string]string{
		"org1_email_settings": `{"from_name": "Acme Live", "order_confirmation_enabled": false, "unknown_field": "ignored"}`,
	}})

	got := resolver.Email(context.Background(), "org1")

	assert.Equal(t, "Acme Live", got.FromName)
	assert.False(t, got.OrderConfirmationEnabled)
	// Fields absent from the stored blob keep their defaults.
	assert.Equal(t, DefaultEmailSettings().FromAddress, got.FromAddress)
	assert.True(t, got.AbandonedCartRecoveryEnabled)
}

func TestEmail_KeysAreTenantScoped(t *testing.T) {
	resolver := NewResolver(&fakeStore{values: map[string]string{
		"org1_email_settings": `{"from_name": "Org One"}`,
	}})

	assert.Equal(t, "Org One", resolver.Email(context.Background(), "org1").FromName)
	assert.Equal(t, DefaultEmailSettings().FromName, resolver.Email(context.Background(), "org2").FromName)
}

func TestWalletPass_PartialOverlay(t *testing.T) {
	resolver := NewResolver(&fakeStore{values: map[string]string{
		"org1_wallet_pass_settings": `{"google_wallet_enabled": true}`,
	}})

	got := resolver.WalletPass(context.Background(), "org1")

	assert.True(t, got.GoogleWalletEnabled)
	assert.False(t, got.AppleWalletEnabled)
	assert.Equal(t, DefaultWalletPassSettings().PassBackgroundColor, got.PassBackgroundColor)
}

func TestPdfTicket_PartialOverlay(t *testing.T) {
	resolver := NewResolver(&fakeStore{values: map[string]string{
		"org1_pdf_ticket_settings": `{"accent_color": "#112233", "show_holder_name": false}`,
	}})

	got := resolver.PdfTicket(context.Background(), "org1")

	assert.Equal(t, "#112233", got.AccentColor)
	assert.False(t, got.ShowHolderName)
	assert.Equal(t, DefaultPdfTicketSettings().FooterText, got.FooterText)
}
