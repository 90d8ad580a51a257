package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stubwire/stubwire/internal/settings"
)

type fakeIssuer struct {
	url string
	err error
}

func (i *fakeIssuer) IssuePass(_ context.Context, _ string, _ []Ticket) (string, error) {
	return i.url, i.err
}

func TestBuild_NoBaseURL(t *testing.T) {
	builder := NewLinkBuilder(&fakeIssuer{url: "https://passes.example.com/p/1"})
	ws := settings.WalletPassSettings{GoogleWalletEnabled: true, AppleWalletEnabled: true}

	assert.Nil(t, builder.Build(context.Background(), "ord1", nil, ws, ""))
}

func TestBuild_BothProvidersDisabled(t *testing.T) {
	builder := NewLinkBuilder(&fakeIssuer{url: "https://passes.example.com/p/1"})

	assert.Nil(t, builder.Build(context.Background(), "ord1", nil, settings.WalletPassSettings{}, "https://tix.example.com"))
}

func TestBuild_GoogleOnly(t *testing.T) {
	builder := NewLinkBuilder(nil)
	ws := settings.WalletPassSettings{GoogleWalletEnabled: true}

	links := builder.Build(context.Background(), "ord1", nil, ws, "https://tix.example.com")

	require.NotNil(t, links)
	assert.Equal(t, "https://tix.example.com/api/wallet/google/ord1", links.GoogleWalletURL)
	assert.Empty(t, links.AppleWalletURL)
}

func TestBuild_AppleFailureDegradesToPartial(t *testing.T) {
	builder := NewLinkBuilder(&fakeIssuer{err: errors.New("signing cert expired")})
	ws := settings.WalletPassSettings{GoogleWalletEnabled: true, AppleWalletEnabled: true}

	links := builder.Build(context.Background(), "ord1", nil, ws, "https://tix.example.com")

	require.NotNil(t, links)
	assert.NotEmpty(t, links.GoogleWalletURL)
	assert.Empty(t, links.AppleWalletURL)
}

func TestBuild_AppleFailureAloneIsNil(t *testing.T) {
	builder := NewLinkBuilder(&fakeIssuer{err: errors.New("signing cert expired")})
	ws := settings.WalletPassSettings{AppleWalletEnabled: true}

	assert.Nil(t, builder.Build(context.Background(), "ord1", nil, ws, "https://tix.example.com"))
}

func TestBuild_BothLinks(t *testing.T) {
	builder := NewLinkBuilder(&fakeIssuer{url: "https://passes.example.com/p/ord1.pkpass"})
	ws := settings.WalletPassSettings{GoogleWalletEnabled: true, AppleWalletEnabled: true}
	tickets := []Ticket{{Code: "TKT-1", Type: "GA"}}

	links := builder.Build(context.Background(), "ord1", tickets, ws, "https://tix.example.com")

	require.NotNil(t, links)
	assert.Equal(t, "https://tix.example.com/api/wallet/google/ord1", links.GoogleWalletURL)
	assert.Equal(t, "https://passes.example.com/p/ord1.pkpass", links.AppleWalletURL)
}
