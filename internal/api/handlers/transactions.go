package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/middleware"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/service"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/validation"
)

// TransactionHandler handles HTTP requests for ledger endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the transactionService.
type TransactionHandler struct {
	transactionService *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// Transactions handles GET requests to list the user's ledger rows.
//
// Endpoint: GET /api/transaction
// Query: propertyId, dateFrom, dateTo, type, includeDeleted (all optional)
// Response: 200 OK with array of Transaction, oldest first
// Error: 400 Bad Request if a query parameter is invalid
// Error: 404 Not Found if the property does not belong to the user
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter, err := request.ParseTransactionFilter(userID,
		q.Get("propertyId"), q.Get("dateFrom"), q.Get("dateTo"), q.Get("type"), q.Get("includeDeleted"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid query parameters", err.Error())
		return
	}

	transactions, err := h.transactionService.GetTransactions(r.Context(), filter)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTransactions, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// GetTransaction handles GET requests to retrieve a single transaction by ID.
// Soft-deleted transactions are returned with their deletedAt timestamp.
//
// Endpoint: GET /api/transaction/{uuid}
// Response: 200 OK with Transaction
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	transaction, err := h.transactionService.GetTransaction(r.Context(), userID, chi.URLParam(r, middleware.IDParam))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRetrieveTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

// CreateTransaction handles POST requests to create a new transaction.
// Validates the request body, creates the ledger row and reconciles its month.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest (propertyId, categoryId, type, amount, transactionDate, isRecurring, description)
// Response: 201 Created with TransactionMutation
// Error: 400 Bad Request if validation fails, the date is in the future or the category type differs
// Error: 404 Not Found if the property or category does not exist
// Error: 500 Internal Server Error if creation fails
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		respondServiceError(w, apperrors.ErrFailedToCreateTransaction, err)
		return
	}

	mutation, err := h.transactionService.CreateTransaction(r.Context(), userID, req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToCreateTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusCreated, mutation)
}

// UpdateTransaction handles PUT requests to update an existing transaction.
// Validates the request body, updates the given fields and reconciles every affected month.
//
// Endpoint: PUT /api/transaction/{uuid}
// Request Body: UpdateTransactionRequest (all fields optional)
// Response: 200 OK with TransactionMutation
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware) or validation fails
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if update fails
func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, err := parseJSON[request.UpdateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateTransaction(req); err != nil {
		respondServiceError(w, apperrors.ErrFailedToUpdateTransaction, err)
		return
	}

	mutation, err := h.transactionService.UpdateTransaction(r.Context(), userID, chi.URLParam(r, middleware.IDParam), req)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToUpdateTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, mutation)
}

// DeleteTransaction handles DELETE requests to soft-delete a transaction.
// The row is kept with a deletedAt tombstone and its month is reconciled.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 200 OK with TransactionMutation
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if deletion fails
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	mutation, err := h.transactionService.DeleteTransaction(r.Context(), userID, chi.URLParam(r, middleware.IDParam))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToDeleteTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, mutation)
}

// RestoreTransaction handles POST requests to undo a soft delete.
//
// Endpoint: POST /api/transaction/{uuid}/restore
// Response: 200 OK with TransactionMutation
// Error: 400 Bad Request if transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if transaction not found
// Error: 500 Internal Server Error if the restore fails
func (h *TransactionHandler) RestoreTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	mutation, err := h.transactionService.RestoreTransaction(r.Context(), userID, chi.URLParam(r, middleware.IDParam))
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToRestoreTransaction, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, mutation)
}
