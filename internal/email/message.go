package email

import (
	"context"
	"errors"
)

// Message is a provider-agnostic outbound email.
type Message struct {
	From        string
	FromName    string
	ReplyTo     string
	To          string
	Subject     string
	HTML        string
	Text        string
	Attachments []Attachment
	Headers     map[string]string
}

// Attachment is an email attachment. Inline attachments carry a ContentID
// and are rendered in the HTML body via "cid:" references instead of being
// listed as downloadable files.
type Attachment struct {
	Filename    string
	Content     []byte
	ContentType string
	ContentID   string
	Inline      bool
}

// SendResult reports a successful provider dispatch.
type SendResult struct {
	ProviderID   string
	ProviderName string
}

// Provider dispatches a single message. Implementations return a
// *ValidationError for permanent rejections (malformed sender/recipient,
// rejected content); any other error is treated as transient.
type Provider interface {
	Send(ctx context.Context, msg *Message) (*SendResult, error)
	Name() string
}

// ValidationError marks a permanent, non-retryable provider rejection.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return "validation_error: " + e.Detail
}

// IsValidationError reports whether err is a permanent rejection.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
