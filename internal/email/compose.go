package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/stubwire/stubwire/internal/settings"
	"github.com/stubwire/stubwire/internal/wallet"
)

// Content is a fully rendered message body. Text is never empty: a plain
// fallback is always produced alongside the HTML.
type Content struct {
	Subject string
	HTML    string
	Text    string
}

// OrderEmailData is the normalized view of an order used for rendering.
// Built once per send, never persisted.
type OrderEmailData struct {
	OrderNumber  string
	CustomerName string
	EventName    string
	EventDate    string
	Venue        string
	Tickets      []TicketRow
	TotalCents   int64
	Currency     string
	VAT          *VATBlock
	LogoURL      string
	WalletLinks  *wallet.Links
}

// VATBlock is the optional tax breakdown on an order confirmation.
type VATBlock struct {
	Number      string
	Rate        float64
	AmountCents int64
}

// CartLine is one item of an abandoned cart as rendered in the email.
type CartLine struct {
	Name           string
	Quantity       int64
	UnitPriceCents int64
}

// CartEmailData is the normalized view of an abandoned cart plus the
// caller-supplied per-stage copy.
type CartEmailData struct {
	FirstName      string
	EventName      string
	Items          []CartLine
	SubtotalCents  int64
	Currency       string
	RecoveryURL    string
	UnsubscribeURL string
	LogoURL        string

	Subject       string
	PreviewText   string
	Greeting      string
	Body          string
	CTALabel      string
	DiscountLabel string
	DiscountCode  string
}

// Composer renders subject/html/text for the supported message kinds.
type Composer struct{}

func NewComposer() *Composer {
	return &Composer{}
}

func (c *Composer) OrderConfirmation(s settings.EmailSettings, data OrderEmailData) (Content, error) {
	subject := fmt.Sprintf("Your tickets for %s - Order %s", data.EventName, data.OrderNumber)

	html, err := renderHTML(orderConfirmationTemplate, data, subject)
	if err != nil {
		return Content{}, fmt.Errorf("failed to render order confirmation: %w", err)
	}
	text, err := renderText(orderConfirmationTextTemplate, data)
	if err != nil {
		return Content{}, fmt.Errorf("failed to render order confirmation text: %w", err)
	}

	return Content{Subject: subject, HTML: html, Text: fallbackText(text, subject)}, nil
}

func (c *Composer) CartRecovery(s settings.EmailSettings, data CartEmailData) (Content, error) {
	if data.Subject == "" {
		data.Subject = "You left something behind"
	}
	subject := data.Subject
	if data.CTALabel == "" {
		data.CTALabel = "Complete your order"
	}
	if data.Greeting == "" {
		if data.FirstName != "" {
			data.Greeting = fmt.Sprintf("Hi %s,", data.FirstName)
		} else {
			data.Greeting = "Hi,"
		}
	}

	html, err := renderHTML(cartRecoveryTemplate, data, subject)
	if err != nil {
		return Content{}, fmt.Errorf("failed to render cart recovery email: %w", err)
	}
	text, err := renderText(cartRecoveryTextTemplate, data)
	if err != nil {
		return Content{}, fmt.Errorf("failed to render cart recovery text: %w", err)
	}

	return Content{Subject: subject, HTML: html, Text: fallbackText(text, subject)}, nil
}

func fallbackText(text, subject string) string {
	if strings.TrimSpace(text) == "" {
		return subject
	}
	return text
}

// FormatMoney converts cents to a display amount for the given currency.
func FormatMoney(cents int64, currency string) string {
	amount := float64(cents) / 100.0
	switch strings.ToUpper(currency) {
	case "USD", "":
		return fmt.Sprintf("$%.2f", amount)
	case "EUR":
		return fmt.Sprintf("€%.2f", amount)
	case "GBP":
		return fmt.Sprintf("£%.2f", amount)
	default:
		return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
	}
}

var templateFuncs = map[string]any{
	"FormatMoney": FormatMoney,
}

func renderHTML(tmpl *htmltemplate.Template, data any, title string) (string, error) {
	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", err
	}
	return wrapEmailContent(content.String(), title)
}

func renderText(tmpl *texttemplate.Template, data any) (string, error) {
	var content bytes.Buffer
	if err := tmpl.Execute(&content, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(content.String()) + "\n", nil
}

// wrapEmailContent wraps a rendered content section in the base layout.
func wrapEmailContent(content, title string) (string, error) {
	var out bytes.Buffer
	err := baseTemplate.Execute(&out, struct {
		Title   string
		Content htmltemplate.HTML
	}{Title: title, Content: htmltemplate.HTML(content)})
	if err != nil {
		return "", err
	}
	return out.String(), nil
}
