package testutil

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
)

func NewTestReconciliationService(t *testing.T, db *database.DB) *service.ReconciliationService {
	t.Helper()

	transactionRepo := repository.NewTransactionRepository(db)

	return service.NewReconciliationService(
		service.NewMetricsCalculator(transactionRepo),
		repository.NewMetricRepository(db),
		repository.NewPropertyRepository(db),
		transactionRepo,
		1,
	)
}

func NewTestTransactionService(t *testing.T, db *database.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		repository.NewPropertyRepository(db),
		repository.NewCategoryRepository(db),
		NewTestReconciliationService(t, db),
	)
}

func NewTestAnalyticsService(t *testing.T, db *database.DB) *service.AnalyticsService {
	t.Helper()

	return service.NewAnalyticsService(
		repository.NewTransactionRepository(db),
		repository.NewPropertyRepository(db),
		repository.NewMetricRepository(db),
		service.DefaultMaxTrendBuckets,
	)
}

func NewTestPropertyService(t *testing.T, db *database.DB) *service.PropertyService {
	t.Helper()

	return service.NewPropertyService(
		repository.NewPropertyRepository(db),
		repository.NewCategoryRepository(db),
	)
}

func NewTestSystemService(t *testing.T, db *database.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

// MakeID generates a UUID string for testing.
//
// Example usage:
//
//	id := testutil.MakeID()
//	// Returns: "550e8400-e29b-41d4-a716-446655440000"
func MakeID() string {
	return uuid.New().String()
}

// MakePropertyName generates a unique property name for testing.
//
// Example usage:
//
//	name := testutil.MakePropertyName("Harbour View")
//	// Returns: "Harbour View ABC123"
func MakePropertyName(base string) string {
	if base == "" {
		base = "Property"
	}
	return base + " " + randomAlphanumeric(6)
}

// randomAlphanumeric generates a random alphanumeric string of specified length.
func randomAlphanumeric(length int) string {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	for i := range result {
		//nolint:gosec // G404: Using math/rand for test data generation is acceptable
		result[i] = charset[rand.Intn(len(charset))]
	}
	return string(result)
}
