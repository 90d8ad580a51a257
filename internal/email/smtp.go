package email

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/gomail.v2"
)

// SMTPProvider sends email over authenticated SMTP. Selected with
// EMAIL_PROVIDER=smtp for tenants that relay through their own server.
type SMTPProvider struct {
	dialer *gomail.Dialer
}

func NewSMTPProvider(host string, port int, username, password string) *SMTPProvider {
	return &SMTPProvider{dialer: gomail.NewDialer(host, port, username, password)}
}

func (p *SMTPProvider) Name() string {
	return "smtp"
}

func (p *SMTPProvider) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", msg.From, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.ReplyTo != "" {
		m.SetHeader("Reply-To", msg.ReplyTo)
	}
	for key, value := range msg.Headers {
		m.SetHeader(key, value)
	}

	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	for _, att := range msg.Attachments {
		content := att.Content
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(content)
				return err
			}),
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
		}
		if att.Inline {
			// gomail derives the Content-ID from the embed name.
			m.Embed(att.ContentID, settings...)
		} else {
			m.Attach(att.Filename, settings...)
		}
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return nil, fmt.Errorf("smtp send failed: %w", err)
	}
	return &SendResult{ProviderName: p.Name()}, nil
}
