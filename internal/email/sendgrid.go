package email

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridProvider sends email via the SendGrid v3 API.
type SendGridProvider struct {
	client *sendgrid.Client
}

func NewSendGridProvider(apiKey string) *SendGridProvider {
	return &SendGridProvider{client: sendgrid.NewSendClient(apiKey)}
}

func (p *SendGridProvider) Name() string {
	return "sendgrid"
}

func (p *SendGridProvider) Send(ctx context.Context, msg *Message) (*SendResult, error) {
	from := mail.NewEmail(msg.FromName, msg.From)
	to := mail.NewEmail("", msg.To)
	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, msg.HTML)

	if msg.ReplyTo != "" {
		m.SetReplyTo(mail.NewEmail("", msg.ReplyTo))
	}
	if len(msg.Headers) > 0 {
		m.Headers = msg.Headers
	}

	for _, att := range msg.Attachments {
		a := mail.NewAttachment()
		a.SetFilename(att.Filename)
		a.SetType(att.ContentType)
		a.SetContent(base64.StdEncoding.EncodeToString(att.Content))
		if att.Inline {
			a.SetDisposition("inline")
			a.SetContentID(att.ContentID)
		} else {
			a.SetDisposition("attachment")
		}
		m.AddAttachment(a)
	}

	// Disable click/open tracking: transactional mail must not have its
	// restore and wallet URLs rewritten through a tracking domain.
	trackingSettings := mail.NewTrackingSettings()
	clickTracking := mail.NewClickTrackingSetting()
	clickTracking.SetEnable(false)
	clickTracking.SetEnableText(false)
	trackingSettings.SetClickTracking(clickTracking)
	openTracking := mail.NewOpenTrackingSetting()
	openTracking.SetEnable(false)
	trackingSettings.SetOpenTracking(openTracking)
	m.SetTrackingSettings(trackingSettings)

	response, err := p.client.SendWithContext(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var messageID string
		if ids, ok := response.Headers["X-Message-Id"]; ok && len(ids) > 0 {
			messageID = ids[0]
		}
		return &SendResult{ProviderID: messageID, ProviderName: p.Name()}, nil
	}

	// 4xx (other than timeout/rate-limit) means the request itself was
	// rejected and will never succeed on retry.
	if response.StatusCode >= 400 && response.StatusCode < 500 &&
		response.StatusCode != http.StatusRequestTimeout && response.StatusCode != http.StatusTooManyRequests {
		return nil, &ValidationError{Detail: fmt.Sprintf("sendgrid rejected message: %d - %s", response.StatusCode, response.Body)}
	}

	return nil, fmt.Errorf("sendgrid API error: %d - %s", response.StatusCode, response.Body)
}
