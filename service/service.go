package service

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/stubwire/stubwire/internal/cartrecovery"
	"github.com/stubwire/stubwire/internal/email"
	"github.com/stubwire/stubwire/internal/handlers"
	"github.com/stubwire/stubwire/internal/jobs"
	"github.com/stubwire/stubwire/internal/media"
	"github.com/stubwire/stubwire/internal/notify"
	"github.com/stubwire/stubwire/internal/promo"
	"github.com/stubwire/stubwire/internal/settings"
	"github.com/stubwire/stubwire/internal/ticketpdf"
	"github.com/stubwire/stubwire/internal/wallet"
	"github.com/stubwire/stubwire/storage"
)

// Service wires the notification engine together and owns its background
// sweep.
type Service struct {
	storage *storage.Storage
	config  *Config

	engine  *notify.Engine
	sweeper *jobs.RecoverySweeper
	handler *handlers.NotificationHandler
}

func New(store *storage.Storage, config *Config) *Service {
	// The provider is built once here: "not configured" is a
	// constructor-time fact, not a per-call environment read.
	provider := buildProvider(config)
	if provider == nil {
		slog.Info("no email provider configured, sends will be skipped")
	}
	executor := email.NewExecutor(provider, email.DefaultRetryPolicy())

	resolver := settings.NewResolver(store.Settings)
	embedder := media.NewEmbedder(store.Settings)
	composer := email.NewComposer()
	attachments := email.NewAttachmentBuilder(ticketpdf.NewRenderer())
	links := wallet.NewLinkBuilder(nil) // no pass-signing credentials wired yet
	outcomes := notify.NewOutcomeRecorder(store.Orders)

	engine := notify.NewEngine(resolver, embedder, links, attachments, composer, executor, outcomes, config.BaseURL)

	orchestrator := cartrecovery.NewOrchestrator(resolver, embedder, composer, executor, config.BaseURL)
	provisioner := promo.NewProvisioner(config.Stripe.SecretKey, config.Stripe.RecoveryPercentOff)
	sweeper := jobs.NewRecoverySweeper(store.Carts, orchestrator, provisioner)

	return &Service{
		storage: store,
		config:  config,
		engine:  engine,
		sweeper: sweeper,
		handler: handlers.NewNotificationHandler(store, engine),
	}
}

func buildProvider(config *Config) email.Provider {
	switch config.Email.Provider {
	case "smtp":
		if config.Email.SMTPHost == "" {
			return nil
		}
		return email.NewSMTPProvider(config.Email.SMTPHost, config.Email.SMTPPort,
			config.Email.SMTPUsername, config.Email.SMTPPassword)
	case "sendgrid":
		if config.Email.SendGridAPIKey == "" {
			return nil
		}
		return email.NewSendGridProvider(config.Email.SendGridAPIKey)
	default:
		return nil
	}
}

// Engine exposes the notification engine to callers that create orders.
func (s *Service) Engine() *notify.Engine {
	return s.engine
}

// Sweeper exposes the recovery sweep for lifecycle management in main.
func (s *Service) Sweeper() *jobs.RecoverySweeper {
	return s.sweeper
}

func (s *Service) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.handler.HandleHealth)
	e.POST("/api/orders/:id/resend-confirmation", s.handler.HandleResendConfirmation)
	e.GET("/api/cart-recovery/unsubscribe", s.handler.HandleUnsubscribe)
	e.POST("/api/cart-recovery/unsubscribe", s.handler.HandleUnsubscribe)
}
