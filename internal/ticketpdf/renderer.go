package ticketpdf

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/stubwire/stubwire/internal/email"
	"github.com/stubwire/stubwire/internal/settings"
)

const (
	pageMargin = 15.0 // mm
	qrSizeMM   = 50.0
	qrSizePx   = 512
)

// Renderer produces the ticket PDF attached to order confirmations: one
// page per ticket with a scannable QR of the ticket code.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(rows []email.TicketRow, design settings.PdfTicketSettings, logo []byte) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no tickets to render")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Tickets", true)

	accentR, accentG, accentB := parseHexColor(design.AccentColor)

	logoName := ""
	if len(logo) > 0 {
		imageType := detectImageType(logo)
		if imageType != "" {
			logoName = "ticket-logo"
			pdf.RegisterImageOptionsReader(logoName,
				gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(logo))
		}
	}

	pageWidth, _ := pdf.GetPageSize()

	for i, row := range rows {
		pdf.AddPage()

		// Accent header band.
		pdf.SetFillColor(accentR, accentG, accentB)
		pdf.Rect(0, 0, pageWidth, 40, "F")

		if logoName != "" {
			pdf.ImageOptions(logoName, pageMargin, 8, 0, 24, false,
				gofpdf.ImageOptions{ImageType: ""}, 0, "")
		}

		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 22)
		pdf.SetY(12)
		pdf.SetX(pageMargin)
		if logoName != "" {
			pdf.SetX(pageMargin + 45)
		}
		pdf.CellFormat(0, 16, row.EventName, "", 1, "L", false, 0, "")

		pdf.SetTextColor(40, 40, 40)
		pdf.SetY(52)

		writeField := func(label, value string) {
			if value == "" {
				return
			}
			pdf.SetX(pageMargin)
			pdf.SetFont("Helvetica", "B", 11)
			pdf.CellFormat(40, 8, label, "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 11)
			pdf.CellFormat(0, 8, value, "", 1, "L", false, 0, "")
		}

		writeField("Date", row.EventDate)
		writeField("Venue", row.Venue)
		writeField("Ticket type", row.TicketType)
		if design.ShowHolderName {
			writeField("Ticket holder", row.HolderName)
		}
		writeField("Order", row.OrderNumber)
		if row.MerchName != "" {
			merch := row.MerchName
			if row.MerchSize != "" {
				merch = fmt.Sprintf("%s (size %s)", row.MerchName, row.MerchSize)
			}
			writeField("Includes", merch)
		}

		qrPNG, err := qrcode.Encode(row.Code, qrcode.Medium, qrSizePx)
		if err != nil {
			return nil, fmt.Errorf("failed to generate QR code for ticket %s: %w", row.Code, err)
		}
		qrName := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(qrName,
			gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
		qrX := (pageWidth - qrSizeMM) / 2
		pdf.ImageOptions(qrName, qrX, 120, qrSizeMM, qrSizeMM, false,
			gofpdf.ImageOptions{ImageType: ""}, 0, "")

		pdf.SetFont("Courier", "", 12)
		pdf.SetY(120 + qrSizeMM + 4)
		pdf.CellFormat(0, 8, row.Code, "", 1, "C", false, 0, "")

		if design.FooterText != "" {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(130, 130, 130)
			pdf.SetY(-25)
			pdf.SetX(pageMargin)
			pdf.MultiCell(pageWidth-2*pageMargin, 5, design.FooterText, "", "C", false)
			pdf.SetTextColor(40, 40, 40)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func detectImageType(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	default:
		return ""
	}
}

// parseHexColor parses "#RRGGBB"; unparseable input falls back to the
// default accent green.
func parseHexColor(s string) (int, int, int) {
	if len(s) == 7 && s[0] == '#' {
		r, errR := strconv.ParseUint(s[1:3], 16, 8)
		g, errG := strconv.ParseUint(s[3:5], 16, 8)
		b, errB := strconv.ParseUint(s[5:7], 16, 8)
		if errR == nil && errG == nil && errB == nil {
			return int(r), int(g), int(b)
		}
	}
	return 76, 175, 80
}
