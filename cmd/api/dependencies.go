package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"

	"github.com/FACorreiaa/sales-summary/internal/domain/sales/handler"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/history"
	"github.com/FACorreiaa/sales-summary/internal/domain/sales/service"
	"github.com/FACorreiaa/sales-summary/pkg/config"
	"github.com/FACorreiaa/sales-summary/pkg/cron"
	"github.com/FACorreiaa/sales-summary/pkg/db"
	"github.com/FACorreiaa/sales-summary/pkg/metrics"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config  *config.Config
	DB      *db.DB // nil when history is disabled
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Repositories
	HistoryRepo history.Repository

	// Services
	SummaryService *service.SummaryService
	Scheduler      *cron.Scheduler

	// Handlers
	Sessions     *handler.SessionStore
	SalesHandler *handler.SalesHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if cfg.Observability.MetricsEnabled {
		deps.Metrics = metrics.New()
	}

	// Upload history is the only consumer of the database
	if cfg.History.Enabled {
		if err := deps.initDatabase(ctx); err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
	}

	if err := deps.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initHandlers(); err != nil {
		return nil, fmt.Errorf("failed to init handlers: %w", err)
	}

	logger.Info("all dependencies initialized successfully",
		slog.Bool("history_enabled", cfg.History.Enabled),
		slog.Bool("metrics_enabled", cfg.Observability.MetricsEnabled),
	)

	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase(ctx context.Context) error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(ctx, history.Migrations, history.MigrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

// initRepositories initializes all repository layer dependencies
func (d *Dependencies) initRepositories() error {
	if d.DB != nil {
		d.HistoryRepo = history.NewPostgresRepository(d.DB.Pool)
	}

	d.Logger.Info("repositories initialized")
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() error {
	d.SummaryService = service.NewSummaryService(d.Logger).
		WithMetrics(d.Metrics)

	if d.HistoryRepo != nil {
		d.SummaryService.WithHistory(d.HistoryRepo)

		d.Scheduler = cron.NewScheduler(
			d.HistoryRepo,
			d.Config.History.RetentionDays,
			d.Config.History.PruneSchedule,
			d.Logger,
		).WithMetrics(d.Metrics)
	}

	d.Logger.Info("services initialized")
	return nil
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() error {
	secret := []byte(d.Config.Session.Secret)
	if len(secret) == 0 {
		return fmt.Errorf("session secret is required")
	}

	// Summaries can outgrow a cookie, so sessions live on disk.
	store := sessions.NewFilesystemStore(d.Config.Session.Dir, secret)
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   d.Config.Session.MaxAgeSeconds,
		HttpOnly: true,
		Secure:   d.Config.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	d.Sessions = handler.NewSessionStore(store)

	d.SalesHandler = handler.NewSalesHandler(d.SummaryService, d.Sessions, d.Config.Upload.MaxBytes, d.Logger)
	if d.HistoryRepo != nil {
		d.SalesHandler.WithUploads(d.HistoryRepo)
	}

	d.Logger.Info("handlers initialized")
	return nil
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	if d.DB != nil {
		d.DB.Close()
	}
	d.Logger.Info("cleanup completed")
}
