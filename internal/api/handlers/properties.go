package handlers

import (
	"net/http"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
)

// PropertyHandler serves the property and category reference data.
type PropertyHandler struct {
	propertyService *service.PropertyService
}

// NewPropertyHandler creates a new PropertyHandler with the provided service dependency.
func NewPropertyHandler(propertyService *service.PropertyService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
	}
}

// Properties handles GET requests to list the user's properties.
//
// Endpoint: GET /api/property
// Response: 200 OK with array of Property ordered by name
// Error: 500 Internal Server Error if retrieval fails
func (h *PropertyHandler) Properties(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	properties, err := h.propertyService.GetProperties(r.Context(), userID)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveProperties, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, properties)
}

// Categories handles GET requests to list active categories.
//
// Endpoint: GET /api/category
// Response: 200 OK with array of Category
// Error: 500 Internal Server Error if retrieval fails
func (h *PropertyHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.propertyService.GetCategories(r.Context())
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveCategories, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, categories)
}
