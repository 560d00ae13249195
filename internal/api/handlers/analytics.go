package handlers

import (
	"net/http"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
)

// AnalyticsHandler handles HTTP requests for the read-only analytics endpoints.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler with the provided service dependency.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// KPIs handles GET requests for portfolio KPIs.
//
// Endpoint: GET /api/analytics/kpis
// Query: propertyId, dateFrom, dateTo, includePropertyDetails (all optional)
// Response: 200 OK with PortfolioKPIs
// Error: 400 Bad Request if a query parameter is invalid
// Error: 404 Not Found if the property does not belong to the user
// Error: 500 Internal Server Error if computation fails
func (h *AnalyticsHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req, err := request.ParseKPIRequest(q.Get("propertyId"), q.Get("dateFrom"), q.Get("dateTo"), q.Get("includePropertyDetails"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	kpis, err := h.analyticsService.GetKPIs(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToGetKPIs, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, kpis)
}

// Charts handles GET requests for trend and breakdown series.
//
// Endpoint: GET /api/analytics/charts
// Query: propertyId, dateFrom, dateTo, granularity, chartType (all optional)
// Response: 200 OK with Charts
// Error: 400 Bad Request if a query parameter is invalid or the granularity yields too many buckets
// Error: 404 Not Found if the property does not belong to the user
// Error: 500 Internal Server Error if computation fails
func (h *AnalyticsHandler) Charts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req, err := request.ParseChartRequest(q.Get("propertyId"), q.Get("dateFrom"), q.Get("dateTo"), q.Get("granularity"), q.Get("chartType"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	charts, err := h.analyticsService.GetCharts(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToGetCharts, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, charts)
}

// Comparison handles GET requests for the property ranking.
//
// Endpoint: GET /api/analytics/comparison
// Query: dateFrom, dateTo, sortBy (netIncome, totalIncome or roi; all optional)
// Response: 200 OK with array of PropertyRanking
// Error: 400 Bad Request if a query parameter is invalid
// Error: 500 Internal Server Error if computation fails
func (h *AnalyticsHandler) Comparison(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	req, err := request.ParseComparisonRequest(q.Get("dateFrom"), q.Get("dateTo"), q.Get("sortBy"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	rankings, err := h.analyticsService.GetPropertyComparison(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToGetComparison, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, rankings)
}
