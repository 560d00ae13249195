// Package app opens the store and wires the repository and service layers shared by the
// server and the command line tool.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/config"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
)

// App holds an open store and the services built on it.
type App struct {
	DB        *database.DB
	Services  api.Services
	Scheduler *service.ReconcileScheduler // nil when no schedule is configured
}

// New opens the configured database, applies pending migrations and wires the services.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.Open(cfg.Database.Driver, cfg.Database.Path, cfg.Database.QueryTimeout)
	if err != nil {
		return nil, err
	}

	log.Printf("Connected to %s database: %s", db.Driver, cfg.Database.Path)

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	a, err := Wire(db, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// Wire builds the repositories and services on an already migrated database.
func Wire(db *database.DB, cfg *config.Config) (*App, error) {
	// Create repositories
	propertyRepo := repository.NewPropertyRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	metricRepo := repository.NewMetricRepository(db)

	// Create services
	calculator := service.NewMetricsCalculator(transactionRepo)
	reconciliationService := service.NewReconciliationService(
		calculator,
		metricRepo,
		propertyRepo,
		transactionRepo,
		cfg.Reconcile.Workers,
	)

	a := &App{
		DB: db,
		Services: api.Services{
			System:   service.NewSystemService(db),
			Property: service.NewPropertyService(propertyRepo, categoryRepo),
			Transaction: service.NewTransactionService(
				transactionRepo,
				propertyRepo,
				categoryRepo,
				reconciliationService,
			),
			Reconciliation: reconciliationService,
			Analytics: service.NewAnalyticsService(
				transactionRepo,
				propertyRepo,
				metricRepo,
				cfg.Analytics.MaxTrendBuckets,
			),
		},
	}

	if cfg.Reconcile.Schedule != "" {
		scheduler, err := service.NewReconcileScheduler(
			cfg.Reconcile.Schedule,
			propertyRepo,
			reconciliationService,
			cfg.Reconcile.RunTimeout,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create reconcile scheduler: %w", err)
		}
		a.Scheduler = scheduler
	}

	return a, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	return a.DB.Close()
}
