package handlers

import (
	"net/http"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

// ReconcileHandler handles HTTP requests for aggregate reconciliation endpoints.
type ReconcileHandler struct {
	reconciliationService *service.ReconciliationService
}

// NewReconcileHandler creates a new ReconcileHandler with the provided service dependency.
func NewReconcileHandler(reconciliationService *service.ReconciliationService) *ReconcileHandler {
	return &ReconcileHandler{
		reconciliationService: reconciliationService,
	}
}

// Reconcile handles POST requests to recompute the user's monthly aggregates.
// Without propertyId every property of the user is reconciled. validate checks the current
// month of the property before recalculation; cleanup removes empty aggregate rows.
//
// Endpoint: POST /api/reconcile
// Request Body: ReconcileRequest (propertyId, fromDate, toDate, cleanup, validate; all optional)
// Response: 200 OK with ReconcileResult
// Error: 400 Bad Request if validation fails
// Error: 404 Not Found if the property does not belong to the user
// Error: 503 Service Unavailable if the store fails; the call is safe to retry
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req := request.ReconcileRequest{}
	if r.ContentLength != 0 {
		var err error
		req, err = parseJSON[request.ReconcileRequest](r)
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	}

	opts, err := validation.ValidateReconcileRequest(req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToReconcile, err)
		return
	}

	result, err := h.reconciliationService.Reconcile(r.Context(), userID, opts)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToReconcile, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Validate handles GET requests comparing a stored monthly aggregate with the ledger.
// A stale aggregate is reported in the body with isValid false, not as an error status.
//
// Endpoint: GET /api/reconcile/validate
// Query: propertyId, year, month (all required)
// Response: 200 OK with ValidationResult
// Error: 400 Bad Request if a parameter is missing or invalid
// Error: 404 Not Found if the property does not belong to the user
func (h *ReconcileHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	propertyID, year, month, err := request.ParseValidatePeriod(q.Get("propertyId"), q.Get("year"), q.Get("month"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	result, err := h.reconciliationService.Validate(r.Context(), userID, propertyID, year, month)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToValidate, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
