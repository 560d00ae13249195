package service

import (
	"context"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// Version is the application version reported by the system endpoints.
// Overridden at build time with -ldflags "-X .../internal/service.Version=...".
var Version = "dev"

// SystemService handles system-related operations
type SystemService struct {
	db *database.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *database.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion returns the application version and the state of the database schema.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, pending, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	return model.VersionInfo{
		AppVersion:      Version,
		DbVersion:       dbVersion,
		DbDriver:        s.db.Driver,
		MigrationNeeded: pending,
	}, nil
}
