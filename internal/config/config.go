// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	App        AppConfig
	Session    SessionConfig
	Blob       BlobConfig
	Events     EventsConfig
	Lifecycle  LifecycleConfig
	Resilience ResilienceConfig
	RateLimit  RateLimitConfig
	Payment    PaymentConfig
	Admin      AdminConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `env:"PORT" envDefault:"8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"60s"`
	// PublicURL is the externally reachable base URL, used to build blob links.
	PublicURL string `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
}

// DatabaseConfig holds the relational store settings.
// Driver "sqlite" uses Path and is meant for local runs and tests.
type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"jurigo"`
	Password string `env:"DB_PASSWORD" envDefault:"jurigo"`
	DBName   string `env:"DB_NAME" envDefault:"jurigo"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	Path     string `env:"DB_PATH" envDefault:"jurigo.db"`
	Debug    bool   `env:"DB_DEBUG"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool   `env:"DEV" envDefault:"true"`
	Migrations bool   `env:"MIGRATIONS" envDefault:"true"`
	SQLMigrate bool   `env:"SQL_MIGRATIONS"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret   string        `env:"SESSION_SECRET" envDefault:"devsessionsecret"`
	TTL      time.Duration `env:"SESSION_TTL" envDefault:"168h"`
	Secure   bool          `env:"SESSION_SECURE"`
	CacheTTL time.Duration `env:"ROLE_CACHE_TTL" envDefault:"5m"`
}

// BlobConfig configures document storage and signed references.
type BlobConfig struct {
	Dir        string        `env:"BLOB_DIR" envDefault:"./data/blobs"`
	SigningKey string        `env:"BLOB_SIGNING_KEY" envDefault:"devblobsigningkey"`
	TTL        time.Duration `env:"BLOB_URL_TTL" envDefault:"15m"`
	MaxBytes   int64         `env:"BLOB_MAX_BYTES" envDefault:"10485760"`
}

// EventsConfig configures lifecycle event publishing. Empty URL disables it.
type EventsConfig struct {
	NATSURL       string `env:"NATS_URL"`
	SubjectPrefix string `env:"EVENTS_SUBJECT_PREFIX" envDefault:"jurigo"`
}

// LifecycleConfig toggles the optional hardening rules of the lifecycle.
type LifecycleConfig struct {
	StrictTransitions   bool `env:"LIFECYCLE_STRICT_TRANSITIONS"`
	DocumentOwnership   bool `env:"LIFECYCLE_DOCUMENT_OWNERSHIP" envDefault:"true"`
	AutoAdvanceOnUpload bool `env:"LIFECYCLE_AUTO_ADVANCE"`
}

// ResilienceConfig tunes the circuit breaker around blob and event calls.
type ResilienceConfig struct {
	BreakerEnabled      bool          `env:"BREAKER_ENABLED" envDefault:"true"`
	BreakerMinRequests  uint32        `env:"BREAKER_MIN_REQUESTS" envDefault:"10"`
	BreakerFailureRatio float64       `env:"BREAKER_FAILURE_RATIO" envDefault:"0.5"`
	BreakerOpenTimeout  time.Duration `env:"BREAKER_OPEN_TIMEOUT" envDefault:"30s"`
}

// RateLimitConfig limits anonymous intake requests per client address.
type RateLimitConfig struct {
	RPS   float64 `env:"INTAKE_RATE_RPS" envDefault:"1"`
	Burst int     `env:"INTAKE_RATE_BURST" envDefault:"5"`
}

// PaymentConfig holds the payment provider webhook secret.
type PaymentConfig struct {
	WebhookSecret string `env:"PAYMENT_WEBHOOK_SECRET"`
}

// AdminConfig bootstraps an admin account on startup when both are set.
type AdminConfig struct {
	Email    string `env:"ADMIN_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe or unusable.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Blob.TTL <= 0 {
		errs = append(errs, errors.New("BLOB_URL_TTL must be positive"))
	}
	if !c.App.Dev {
		if c.Session.Secret == "" || c.Session.Secret == "devsessionsecret" {
			errs = append(errs, errors.New("SESSION_SECRET must be set outside dev mode"))
		}
		if c.Blob.SigningKey == "" || c.Blob.SigningKey == "devblobsigningkey" {
			errs = append(errs, errors.New("BLOB_SIGNING_KEY must be set outside dev mode"))
		}
		if c.Payment.WebhookSecret == "" {
			errs = append(errs, errors.New("PAYMENT_WEBHOOK_SECRET must be set outside dev mode"))
		}
	}
	return errors.Join(errs...)
}
