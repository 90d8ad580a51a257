package email

import (
	"fmt"

	"github.com/stubwire/stubwire/internal/media"
	"github.com/stubwire/stubwire/internal/settings"
)

// TicketRow is the normalized ticket line fed to the PDF renderer.
type TicketRow struct {
	Code        string
	EventName   string
	EventDate   string
	Venue       string
	TicketType  string
	HolderName  string
	OrderNumber string
	MerchName   string
	MerchSize   string
}

// PDFRenderer turns ticket rows into a single PDF document. The logo bytes
// are optional and may differ from the email-body logo.
type PDFRenderer interface {
	Render(rows []TicketRow, design settings.PdfTicketSettings, logo []byte) ([]byte, error)
}

// AttachmentBuilder assembles the final attachment list: always exactly one
// PDF, plus one inline logo attachment iff the email logo asset resolved.
type AttachmentBuilder struct {
	renderer PDFRenderer
}

func NewAttachmentBuilder(renderer PDFRenderer) *AttachmentBuilder {
	return &AttachmentBuilder{renderer: renderer}
}

// Build renders the ticket PDF and appends the inline email logo when
// present. A render failure is returned as an error: the PDF is the
// deliverable, so the caller must abort the send rather than send without
// it.
func (b *AttachmentBuilder) Build(rows []TicketRow, design settings.PdfTicketSettings, pdfLogo, emailLogo *media.InlineAsset) ([]Attachment, error) {
	var logoBytes []byte
	if pdfLogo != nil {
		logoBytes = pdfLogo.Bytes
	}

	pdf, err := b.renderer.Render(rows, design, logoBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to render ticket PDF: %w", err)
	}

	filename := "tickets.pdf"
	if len(rows) > 0 && rows[0].OrderNumber != "" {
		filename = fmt.Sprintf("tickets-%s.pdf", rows[0].OrderNumber)
	}

	attachments := []Attachment{{
		Filename:    filename,
		Content:     pdf,
		ContentType: "application/pdf",
	}}

	if emailLogo != nil {
		attachments = append(attachments, Attachment{
			Filename:    "logo",
			Content:     emailLogo.Bytes,
			ContentType: emailLogo.MIMEType,
			ContentID:   emailLogo.ContentID,
			Inline:      true,
		})
	}

	return attachments, nil
}
