package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/stubwire/stubwire/internal/email"
	"github.com/stubwire/stubwire/internal/media"
	"github.com/stubwire/stubwire/internal/settings"
	"github.com/stubwire/stubwire/internal/wallet"
)

const eventDateFormat = "January 2, 2006 at 3:04 PM"

// Engine drives the order-confirmation pipeline: settings, logo embedding,
// wallet links, composition, attachment generation, dispatch and outcome
// recording. Its public surface never returns an error; the caller learns
// the result from the persisted order metadata.
type Engine struct {
	resolver    *settings.Resolver
	embedder    *media.Embedder
	links       *wallet.LinkBuilder
	attachments *email.AttachmentBuilder
	composer    *email.Composer
	executor    *email.Executor
	outcomes    *OutcomeRecorder
	baseURL     string
	now         func() time.Time
}

func NewEngine(
	resolver *settings.Resolver,
	embedder *media.Embedder,
	links *wallet.LinkBuilder,
	attachments *email.AttachmentBuilder,
	composer *email.Composer,
	executor *email.Executor,
	outcomes *OutcomeRecorder,
	baseURL string,
) *Engine {
	return &Engine{
		resolver:    resolver,
		embedder:    embedder,
		links:       links,
		attachments: attachments,
		composer:    composer,
		executor:    executor,
		outcomes:    outcomes,
		baseURL:     baseURL,
		now:         time.Now,
	}
}

// SendOrderConfirmation sends the confirmation email for a newly created
// order. Fire-and-forget: the outcome is merged into the order's metadata,
// not returned. Logo and wallet failures degrade the email; a PDF render
// failure aborts the send since the attachment is the deliverable.
func (e *Engine) SendOrderConfirmation(ctx context.Context, orgID string, in OrderConfirmation) {
	log := slog.With("org_id", orgID, "order_id", in.Order.ID)

	emailSettings := e.resolver.Email(ctx, orgID)
	if !emailSettings.OrderConfirmationEnabled {
		log.Info("order confirmation emails disabled for tenant, skipping")
		return
	}
	if !e.executor.Configured() {
		log.Info("email provider not configured, recording skipped send")
		e.outcomes.Record(ctx, in.Order.ID, map[string]any{
			"email_sent":         false,
			"email_attempted_at": e.now().UTC().Format(time.RFC3339),
			"email_error":        email.ReasonNotConfigured,
			"email_to":           in.Customer.Email,
		})
		return
	}

	pdfSettings := e.resolver.PdfTicket(ctx, orgID)
	walletSettings := e.resolver.WalletPass(ctx, orgID)

	// The email-body logo and the PDF logo resolve independently; either
	// may be absent.
	emailLogo := e.embedder.EmbedLogo(ctx, emailSettings.LogoRef)
	pdfLogo := e.embedder.EmbedLogo(ctx, pdfSettings.LogoRef)

	logoURL := ""
	if emailLogo != nil {
		logoURL = emailLogo.CIDRef()
	} else if emailSettings.LogoRef != "" {
		logoURL = e.baseURL + emailSettings.LogoRef
	}

	walletTickets := make([]wallet.Ticket, 0, len(in.Tickets))
	for _, t := range in.Tickets {
		walletTickets = append(walletTickets, wallet.Ticket{Code: t.Code, Type: t.Type, HolderName: t.HolderName})
	}
	walletLinks := e.links.Build(ctx, in.Order.ID, walletTickets, walletSettings, e.baseURL)

	rows := ticketRows(in)

	var vat *email.VATBlock
	if in.VAT != nil {
		vat = &email.VATBlock{Number: in.VAT.Number, Rate: in.VAT.Rate, AmountCents: in.VAT.AmountCents}
	}

	content, err := e.composer.OrderConfirmation(emailSettings, email.OrderEmailData{
		OrderNumber:  in.Order.Number,
		CustomerName: in.Customer.FullName(),
		EventName:    in.Event.Name,
		EventDate:    in.Event.StartsAt.Format(eventDateFormat),
		Venue:        in.Event.VenueName,
		Tickets:      rows,
		TotalCents:   in.Order.TotalCents,
		Currency:     in.Order.Currency,
		VAT:          vat,
		LogoURL:      logoURL,
		WalletLinks:  walletLinks,
	})
	if err != nil {
		log.Error("failed to compose order confirmation", "error", err)
		e.recordFailure(ctx, in, err.Error())
		return
	}

	attachments, err := e.attachments.Build(rows, pdfSettings, pdfLogo, emailLogo)
	if err != nil {
		log.Error("ticket PDF generation failed, aborting send", "error", err)
		e.recordFailure(ctx, in, err.Error())
		return
	}

	outcome := e.executor.Send(ctx, &email.Message{
		From:        emailSettings.FromAddress,
		FromName:    emailSettings.FromName,
		ReplyTo:     emailSettings.ReplyTo,
		To:          in.Customer.Email,
		Subject:     content.Subject,
		HTML:        content.HTML,
		Text:        content.Text,
		Attachments: attachments,
	})

	if outcome.Sent {
		e.outcomes.Record(ctx, in.Order.ID, map[string]any{
			"email_sent":    true,
			"email_sent_at": e.now().UTC().Format(time.RFC3339),
			"email_to":      in.Customer.Email,
		})
		return
	}
	e.recordFailure(ctx, in, outcome.Reason)
}

func (e *Engine) recordFailure(ctx context.Context, in OrderConfirmation, reason string) {
	e.outcomes.Record(ctx, in.Order.ID, map[string]any{
		"email_sent":         false,
		"email_attempted_at": e.now().UTC().Format(time.RFC3339),
		"email_error":        reason,
		"email_to":           in.Customer.Email,
	})
}

func ticketRows(in OrderConfirmation) []email.TicketRow {
	rows := make([]email.TicketRow, 0, len(in.Tickets))
	eventDate := in.Event.StartsAt.Format(eventDateFormat)
	for _, t := range in.Tickets {
		rows = append(rows, email.TicketRow{
			Code:        t.Code,
			EventName:   in.Event.Name,
			EventDate:   eventDate,
			Venue:       in.Event.VenueName,
			TicketType:  t.Type,
			HolderName:  t.HolderName,
			OrderNumber: in.Order.Number,
			MerchName:   t.MerchName,
			MerchSize:   t.MerchSize,
		})
	}
	return rows
}
