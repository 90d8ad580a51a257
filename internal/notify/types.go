package notify

import "time"

// Order identifies the purchase being confirmed.
type Order struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

func (c Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

type Event struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	VenueName string    `json:"venue_name"`
	StartsAt  time.Time `json:"starts_at"`
}

// TicketLine is one purchased ticket, with optional bundled merchandise.
type TicketLine struct {
	Code       string `json:"code"`
	Type       string `json:"type"`
	HolderName string `json:"holder_name"`
	MerchName  string `json:"merch_name,omitempty"`
	MerchSize  string `json:"merch_size,omitempty"`
}

type VATBlock struct {
	Number      string  `json:"number"`
	Rate        float64 `json:"rate"`
	AmountCents int64   `json:"amount_cents"`
}

// OrderConfirmation is the full input for one confirmation send. It is
// also what gets persisted as the order payload for manual resends.
type OrderConfirmation struct {
	Order    Order       `json:"order"`
	Customer Customer    `json:"customer"`
	Event    Event       `json:"event"`
	Tickets  []TicketLine `json:"tickets"`
	VAT      *VATBlock   `json:"vat,omitempty"`
}
