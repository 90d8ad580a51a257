package email

import (
	"context"
	"log/slog"
	"time"
)

// ReasonNotConfigured is reported when no provider credential exists; no
// network attempt is made in that case.
const ReasonNotConfigured = "not_configured"

// SendOutcome is the terminal result of a dispatch. Send never returns an
// error: failures are folded into Reason.
type SendOutcome struct {
	Sent     bool
	Reason   string
	Attempts int
}

// RetryPolicy is an explicit, independently testable retry description.
type RetryPolicy struct {
	// MaxAttempts bounds total provider calls, successful or not.
	MaxAttempts int
	// Backoff returns the delay before the (attempt+1)-th call, where
	// attempt counts completed calls.
	Backoff func(attempt int) time.Duration
	// Retryable decides whether a failed attempt may be retried.
	Retryable func(err error) bool
}

// DefaultRetryPolicy retries transient failures twice with linear backoff
// (1s, 2s) and stops immediately on validation-class errors.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
		Retryable: func(err error) bool {
			return !IsValidationError(err)
		},
	}
}

// Executor sends composed messages with classification-aware bounded
// retry. The provider is injected once at construction; a nil provider
// makes "not configured" a constructor-time fact.
type Executor struct {
	provider Provider
	policy   RetryPolicy
	sleep    func(time.Duration)
}

func NewExecutor(provider Provider, policy RetryPolicy) *Executor {
	return &Executor{provider: provider, policy: policy, sleep: time.Sleep}
}

// NewExecutorWithSleep injects the delay function so attempt counts and
// backoff timing can be asserted without real sleeps.
func NewExecutorWithSleep(provider Provider, policy RetryPolicy, sleep func(time.Duration)) *Executor {
	return &Executor{provider: provider, policy: policy, sleep: sleep}
}

// Configured reports whether a provider credential is wired in.
func (e *Executor) Configured() bool {
	return e.provider != nil
}

// Send dispatches msg. It never panics and never returns an error: the
// outcome is either sent, or not sent with a reason. At most
// policy.MaxAttempts provider calls are made, at most one of which
// succeeds.
func (e *Executor) Send(ctx context.Context, msg *Message) SendOutcome {
	if e.provider == nil {
		slog.Info("email provider not configured, skipping send", "to", msg.To, "subject", msg.Subject)
		return SendOutcome{Sent: false, Reason: ReasonNotConfigured}
	}

	var lastErr error
	for attempt := 1; attempt <= e.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			e.sleep(e.policy.Backoff(attempt - 1))
		}

		result, err := e.provider.Send(ctx, msg)
		if err == nil {
			slog.Info("email sent", "provider", e.provider.Name(), "to", msg.To,
				"subject", msg.Subject, "attempt", attempt, "provider_id", result.ProviderID)
			return SendOutcome{Sent: true, Attempts: attempt}
		}

		lastErr = err
		if !e.policy.Retryable(err) {
			slog.Warn("email rejected permanently, not retrying", "provider", e.provider.Name(),
				"to", msg.To, "attempt", attempt, "error", err)
			return SendOutcome{Sent: false, Reason: err.Error(), Attempts: attempt}
		}
		slog.Warn("email send failed", "provider", e.provider.Name(), "to", msg.To,
			"attempt", attempt, "max_attempts", e.policy.MaxAttempts, "error", err)
	}

	return SendOutcome{Sent: false, Reason: lastErr.Error(), Attempts: e.policy.MaxAttempts}
}
