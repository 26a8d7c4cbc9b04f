package policy

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/diewo77/jurigo/auth"
	"github.com/diewo77/jurigo/internal/blob"
	"github.com/diewo77/jurigo/internal/config"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/handlers"
	"github.com/diewo77/jurigo/internal/lifecycle"
	"github.com/diewo77/jurigo/internal/metrics"
	"github.com/diewo77/jurigo/internal/middleware"
	"github.com/diewo77/jurigo/internal/resilience"
	"github.com/diewo77/jurigo/internal/store"
	"gorm.io/gorm"
)

// RouterConfig holds the configured handlers and middleware of the
// application.
type RouterConfig struct {
	// AuthGate resolves identities and provides authorization middleware
	AuthGate *AuthGate
	Sessions *auth.Manager

	Controller *lifecycle.Controller
	Blobs      *blob.Service
	Metrics    *metrics.Registry

	// IntakeLimiter throttles anonymous company creation
	IntakeLimiter *middleware.RateLimiter

	AuthHandler     *handlers.AuthHandler
	CompanyHandler  *handlers.CompanyHandler
	DocumentHandler *handlers.DocumentHandler
	AdminHandler    *handlers.AdminHandler
	WebhookHandler  *handlers.WebhookHandler
	BlobHandler     *handlers.BlobHandler
	HealthHandler   *handlers.HealthHandler
}

// RouterOptions carries the collaborators built by main.
type RouterOptions struct {
	Logger  *slog.Logger
	Events  events.Publisher
	Metrics *metrics.Registry
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// NewRouterConfig wires the session manager, the authorization gate, the
// blob service and the lifecycle controller behind every handler.
func NewRouterConfig(db *gorm.DB, cfg *config.Config, opts RouterOptions) (*RouterConfig, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := opts.Metrics
	if reg == nil {
		reg = metrics.New()
	}

	authGate := NewAuthGate(db, cfg.Session.CacheTTL)
	sessions := auth.NewManager(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure)
	if opts.Clock != nil {
		sessions.WithClock(opts.Clock)
	}
	sessions.SetUserVerifier(authGate.UserExists)

	fs, err := blob.NewLocalFS(cfg.Blob.Dir)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	executor := NewExecutor(cfg.Resilience, log)
	blobs := blob.NewService(fs, blob.NewSigner(cfg.Blob.SigningKey, cfg.Blob.TTL), blob.Options{
		BaseURL:  cfg.Server.PublicURL,
		MaxBytes: cfg.Blob.MaxBytes,
		Executor: executor,
		Observer: reg,
	})

	users := store.NewUsers(db)
	ctl := lifecycle.New(lifecycle.Deps{
		Companies: store.NewCompanies(db),
		Documents: store.NewDocuments(db),
		Notes:     store.NewNotes(db),
		Users:     users,
		Blobs:     blobs,
		Identity:  authGate.Sessions,
		Gate:      authGate.Gate,
		Events:    opts.Events,
		Observer:  reg,
		Logger:    log,
		Clock:     opts.Clock,
		Options: lifecycle.Options{
			StrictTransitions:   cfg.Lifecycle.StrictTransitions,
			DocumentOwnership:   cfg.Lifecycle.DocumentOwnership,
			AutoAdvanceOnUpload: cfg.Lifecycle.AutoAdvanceOnUpload,
		},
	})

	return &RouterConfig{
		AuthGate:        authGate,
		Sessions:        sessions,
		Controller:      ctl,
		Blobs:           blobs,
		Metrics:         reg,
		IntakeLimiter:   middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log),
		AuthHandler:     handlers.NewAuthHandler(users, ctl, sessions, authGate.Sessions, log),
		CompanyHandler:  handlers.NewCompanyHandler(ctl, log),
		DocumentHandler: handlers.NewDocumentHandler(ctl, log),
		AdminHandler:    handlers.NewAdminHandler(ctl, log),
		WebhookHandler:  handlers.NewWebhookHandler(ctl, cfg.Payment.WebhookSecret, log),
		BlobHandler:     handlers.NewBlobHandler(blobs, log),
		HealthHandler:   handlers.NewHealthHandler(db),
	}, nil
}

// NewExecutor builds the circuit breaker used around blob storage and
// event publishing.
func NewExecutor(cfg config.ResilienceConfig, log *slog.Logger) *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  cfg.BreakerMinRequests,
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout,
	}, log)
}
