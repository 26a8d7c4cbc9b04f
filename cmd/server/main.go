package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/jurigo/internal/config"
	"github.com/diewo77/jurigo/internal/db"
	"github.com/diewo77/jurigo/internal/events"
	"github.com/diewo77/jurigo/internal/logging"
	"github.com/diewo77/jurigo/internal/metrics"
	"github.com/diewo77/jurigo/internal/policy"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logging.New("jurigo", cfg.App.LogLevel)
	slog.SetDefault(log)

	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		fatal(log, "database connection failed", err)
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			fatal(log, "migration failed", err)
		}
		log.Info("migrations completed")
		return
	}

	if *seedOnlyFlag {
		if err := seed(cfg, dbConn, log); err != nil {
			fatal(log, "seeding failed", err)
		}
		log.Info("seeding completed")
		return
	}

	if cfg.App.Migrations {
		if err := migrate(cfg, dbConn); err != nil {
			fatal(log, "migration failed", err)
		}
		log.Info("migrations completed")
	}
	if cfg.Admin.Email != "" {
		if err := seed(cfg, dbConn, log); err != nil {
			fatal(log, "seeding failed", err)
		}
	}

	publisher, closeEvents := connectEvents(cfg, log)
	defer closeEvents()

	reg := metrics.New()
	routerCfg, err := policy.NewRouterConfig(dbConn, cfg, policy.RouterOptions{
		Logger:  log,
		Events:  publisher,
		Metrics: reg,
	})
	if err != nil {
		fatal(log, "router setup failed", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	routerCfg.IntakeLimiter.StartCleanup(ctx, 10*time.Minute)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(routerCfg, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("server starting", "port", cfg.Server.Port, "dev", cfg.App.Dev,
			"strict_transitions", cfg.Lifecycle.StrictTransitions,
			"document_ownership", cfg.Lifecycle.DocumentOwnership)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(log, "server error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", "error", err)
	}
	log.Info("server stopped gracefully")
}

// migrate applies the embedded SQL migrations on postgres when enabled,
// and AutoMigrate otherwise.
func migrate(cfg *config.Config, d *gorm.DB) error {
	if cfg.App.SQLMigrate && cfg.Database.Driver == "postgres" {
		return db.RunSQLMigrations(cfg.Database.URL())
	}
	return db.Migrate(d)
}

func seed(cfg *config.Config, d *gorm.DB, log *slog.Logger) error {
	admin, err := db.SeedAdmin(d, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return err
	}
	log.Info("admin account ready", "user_id", admin.ID, "email", admin.Email)
	return nil
}

// connectEvents returns the NATS publisher, or a no-op one when NATS_URL
// is unset.
func connectEvents(cfg *config.Config, log *slog.Logger) (events.Publisher, func()) {
	if cfg.Events.NATSURL == "" {
		log.Info("events disabled, NATS_URL not set")
		return events.Noop{}, func() {}
	}
	pub, err := events.NewNATSPublisher(cfg.Events.NATSURL, cfg.Events.SubjectPrefix, events.NATSOptions{
		Executor: policy.NewExecutor(cfg.Resilience, log),
		Logger:   log,
	})
	if err != nil {
		log.Warn("nats unavailable, events disabled", "error", err)
		return events.Noop{}, func() {}
	}
	return pub, pub.Close
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
