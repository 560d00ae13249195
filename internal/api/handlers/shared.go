package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/middleware"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// parseJSON decodes the request body into T, rejecting unknown fields.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	if r.Body == nil {
		return req, fmt.Errorf("request body is required")
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// requireUserID returns the identity set by middleware.UserIdentity, writing a 401 when
// the handler was mounted without it.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		response.RespondError(w, http.StatusUnauthorized, apperrors.ErrMissingUserID.Error(), "")
		return "", false
	}
	return userID, true
}

// respondServiceError maps a service error onto an HTTP status:
// validation errors are 400, missing or foreign entities 404, transient store
// failures 503 and anything else 500 with the fallback message.
func respondServiceError(w http.ResponseWriter, fallback error, err error) {
	var validationErr *validation.Error

	switch {
	case errors.As(err, &validationErr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", validationErr.Fields)
	case apperrors.IsValidation(err):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrPropertyNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrPropertyNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrTransactionNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), err.Error())
	case errors.Is(err, apperrors.ErrCategoryNotFound):
		response.RespondError(w, http.StatusNotFound, apperrors.ErrCategoryNotFound.Error(), err.Error())
	case apperrors.IsRetryable(err):
		response.RespondUnavailable(w, fallback.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
