package service

import (
	"context"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// PropertyService exposes the read-only property and category reference data.
type PropertyService struct {
	propertyRepo *repository.PropertyRepository
	categoryRepo *repository.CategoryRepository
}

// NewPropertyService creates a new PropertyService with the provided repository dependencies.
func NewPropertyService(
	propertyRepo *repository.PropertyRepository,
	categoryRepo *repository.CategoryRepository,
) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		categoryRepo: categoryRepo,
	}
}

// GetProperties returns the user's non-deleted properties ordered by name.
func (s *PropertyService) GetProperties(ctx context.Context, userID string) ([]model.Property, error) {
	return s.propertyRepo.GetProperties(ctx, model.PropertyFilter{UserID: userID})
}

// GetCategories returns the active categories.
func (s *PropertyService) GetCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.GetCategories(ctx, true)
}
