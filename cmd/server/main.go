package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/app"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/config"
)

func main() {
	// Money is exchanged as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database, migrate and wire services
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialise application: %v", err)
	}
	defer a.Close()

	if a.Scheduler != nil {
		a.Scheduler.Start()
		log.Printf("Reconcile scheduler started with schedule %q", cfg.Reconcile.Schedule)
	}

	// Create router
	router := api.NewRouter(a.Services, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.Scheduler != nil {
		a.Scheduler.Stop(ctx)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
