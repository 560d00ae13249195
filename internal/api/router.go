package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/middleware"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/config"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
)

// Services bundles the service layer the router exposes.
type Services struct {
	System         *service.SystemService
	Property       *service.PropertyService
	Transaction    *service.TransactionService
	Reconciliation *service.ReconciliationService
	Analytics      *service.AnalyticsService
}

// NewRouter creates and configures the HTTP router
func NewRouter(services Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(services.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		// Everything below acts on behalf of a user
		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.UserIdentity)

			propertyHandler := handlers.NewPropertyHandler(services.Property)
			r.Get("/property", propertyHandler.Properties)
			r.Get("/category", propertyHandler.Categories)

			r.Route("/transaction", func(r chi.Router) {
				transactionHandler := handlers.NewTransactionHandler(services.Transaction)
				r.Get("/", transactionHandler.Transactions)
				r.Post("/", transactionHandler.CreateTransaction)

				r.Route("/{uuid}", func(r chi.Router) {
					r.Use(custommiddleware.ValidateUUIDMiddleware)
					r.Get("/", transactionHandler.GetTransaction)
					r.Put("/", transactionHandler.UpdateTransaction)
					r.Delete("/", transactionHandler.DeleteTransaction)
					r.Post("/restore", transactionHandler.RestoreTransaction)
				})
			})

			r.Route("/reconcile", func(r chi.Router) {
				reconcileHandler := handlers.NewReconcileHandler(services.Reconciliation)
				r.Get("/validate", reconcileHandler.Validate)
				r.Group(func(r chi.Router) {
					if cfg.Auth.InternalAPIKey != "" {
						r.Use(custommiddleware.APIKeyMiddleware(cfg.Auth.InternalAPIKey))
					}
					r.Post("/", reconcileHandler.Reconcile)
				})
			})

			r.Route("/analytics", func(r chi.Router) {
				analyticsHandler := handlers.NewAnalyticsHandler(services.Analytics)
				r.Get("/kpis", analyticsHandler.KPIs)
				r.Get("/charts", analyticsHandler.Charts)
				r.Get("/comparison", analyticsHandler.Comparison)
			})
		})
	})

	return r
}
