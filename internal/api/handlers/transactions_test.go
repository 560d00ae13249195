package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/response"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/database"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/testutil"
)

func setupTransactionHandler(t *testing.T) (*TransactionHandler, *database.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ts := testutil.NewTestTransactionService(t, db)
	return NewTransactionHandler(ts), db
}

func TestTransactionHandler_Transactions(t *testing.T) {
	t.Run("returns empty array when no transactions exist", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/transaction", nil), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[[]model.Transaction](t, w)
		if response == nil {
			t.Error("Expected non-nil array, got nil")
		}
		if len(response) != 0 {
			t.Errorf("Expected empty array, got %d transactions", len(response))
		}
	})

	t.Run("returns only the user's transactions", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx1 := testutil.NewTransaction(p).OnDate("2024-01-10").Build(t, db)
		tx2 := testutil.NewTransaction(p).OnDate("2024-02-10").Build(t, db)
		testutil.NewTransaction(testutil.NewProperty(testutil.MakeID()).Build(t, db)).Build(t, db)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/transaction", nil), userID, nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[[]model.Transaction](t, w)
		if len(response) != 2 || response[0].ID != tx1.ID || response[1].ID != tx2.ID {
			t.Errorf("Expected tx1 then tx2, got %+v", response)
		}
	})

	t.Run("filters by type", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		testutil.NewTransaction(p).Income("10").Build(t, db)
		expense := testutil.NewTransaction(p).Expense("5").Build(t, db)

		req := testutil.AsUser(testutil.NewRequestWithQueryParams(http.MethodGet, "/api/transaction",
			map[string]string{"type": "expense"}), userID, nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		response := testutil.DecodeJSON[[]model.Transaction](t, w)
		if len(response) != 1 || response[0].ID != expense.ID {
			t.Errorf("Expected only the expense, got %+v", response)
		}
	})

	t.Run("returns 400 on invalid query parameters", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := testutil.AsUser(testutil.NewRequestWithQueryParams(http.MethodGet, "/api/transaction",
			map[string]string{"dateFrom": "2024-05-01", "dateTo": "2024-04-01"}), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 for a foreign property filter", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.NewProperty(testutil.MakeID()).Build(t, db)

		req := testutil.AsUser(testutil.NewRequestWithQueryParams(http.MethodGet, "/api/transaction",
			map[string]string{"propertyId": p.ID}), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 401 without user identity", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := httptest.NewRequest(http.MethodGet, "/api/transaction", nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 503 on database error", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		db.Close()

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/transaction", nil), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.Transactions(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
		if got := w.Header().Get("Retry-After"); got != "5" {
			t.Errorf("Retry-After = %q, want 5", got)
		}
	})
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns transaction by ID successfully", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(p).Income("1234.50").Build(t, db)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/transaction/"+tx.ID, nil),
			userID, map[string]string{"uuid": tx.ID})
		w := httptest.NewRecorder()

		handler.GetTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.Transaction](t, w)
		if response.ID != tx.ID || !response.Amount.Equal(testutil.D("1234.50")) {
			t.Errorf("Expected %s with amount 1234.50, got %+v", tx.ID, response)
		}
	})

	t.Run("returns 404 for another user's transaction", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		tx := testutil.NewTransaction(testutil.NewProperty(testutil.MakeID()).Build(t, db)).Build(t, db)

		req := testutil.AsUser(httptest.NewRequest(http.MethodGet, "/api/transaction/"+tx.ID, nil),
			testutil.MakeID(), map[string]string{"uuid": tx.ID})
		w := httptest.NewRecorder()

		handler.GetTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("creates transaction and reconciles its month", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)

		body := map[string]any{
			"propertyId":      p.ID,
			"categoryId":      testutil.RentCategoryID,
			"type":            "INCOME",
			"amount":          1500,
			"transactionDate": "2024-03-01",
			"description":     "March rent",
		}
		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", body), userID, nil)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.TransactionMutation](t, w)
		if response.Transaction.ID == "" || response.Transaction.UserID != userID {
			t.Errorf("Unexpected transaction %+v", response.Transaction)
		}
		if len(response.ReconciledPeriods) != 1 || response.ReconciledPeriods[0] != (model.Period{Year: 2024, Month: 3}) {
			t.Errorf("Expected reconciled [2024-03], got %v", response.ReconciledPeriods)
		}
		testutil.AssertRowCount(t, db, "monthly_metric", 1)
	})

	t.Run("returns 400 on invalid JSON", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", "{invalid"), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 with field details on missing required fields", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)

		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", map[string]any{}), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}

		resp := testutil.DecodeJSON[response.ErrorResponse](t, w)
		details, ok := resp.Details.(map[string]any)
		if !ok {
			t.Fatalf("Expected field details, got %T", resp.Details)
		}
		for _, field := range []string{"propertyId", "type", "amount", "transactionDate"} {
			if _, ok := details[field]; !ok {
				t.Errorf("Expected a %s error", field)
			}
		}
	})

	t.Run("returns 400 on a future date", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)

		body := map[string]any{"propertyId": p.ID, "type": "INCOME", "amount": 1, "transactionDate": "2999-01-01"}
		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", body), userID, nil)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on category type mismatch", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)

		body := map[string]any{
			"propertyId":      p.ID,
			"categoryId":      testutil.InsuranceCategoryID,
			"type":            "INCOME",
			"amount":          1,
			"transactionDate": "2024-01-01",
		}
		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", body), userID, nil)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 404 on a foreign property", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		p := testutil.NewProperty(testutil.MakeID()).Build(t, db)

		body := map[string]any{"propertyId": p.ID, "type": "INCOME", "amount": 1, "transactionDate": "2024-01-01"}
		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", body), testutil.MakeID(), nil)
		w := httptest.NewRecorder()

		handler.CreateTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
		testutil.AssertRowCount(t, db, `"transaction"`, 0)
	})
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("moves a transaction to another month", func(t *testing.T) {
		handler, db := setupTransactionHandler(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(p).OnDate("2024-03-15").Build(t, db)

		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPut, "/api/transaction/"+tx.ID,
			map[string]any{"transactionDate": "2024-04-15", "amount": "99.99"}), userID, map[string]string{"uuid": tx.ID})
		w := httptest.NewRecorder()

		handler.UpdateTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.TransactionMutation](t, w)
		if !response.Transaction.Amount.Equal(testutil.D("99.99")) {
			t.Errorf("Expected amount 99.99, got %s", response.Transaction.Amount)
		}
		if len(response.ReconciledPeriods) != 2 {
			t.Errorf("Expected April and March reconciled, got %v", response.ReconciledPeriods)
		}
	})

	t.Run("returns 404 when transaction not found", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		id := testutil.MakeID()

		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPut, "/api/transaction/"+id,
			map[string]any{"description": "x"}), testutil.MakeID(), map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.UpdateTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on unknown fields", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		id := testutil.MakeID()

		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPut, "/api/transaction/"+id,
			`{"portfolioFundId": "abc"}`), testutil.MakeID(), map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.UpdateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 on invalid transaction type", func(t *testing.T) {
		handler, _ := setupTransactionHandler(t)
		id := testutil.MakeID()

		req := testutil.AsUser(testutil.NewJSONRequest(t, http.MethodPut, "/api/transaction/"+id,
			map[string]any{"type": "DIVIDEND"}), testutil.MakeID(), map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.UpdateTransaction(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestTransactionHandler_DeleteRestore(t *testing.T) {
	handler, db := setupTransactionHandler(t)
	userID := testutil.MakeID()
	p := testutil.NewProperty(userID).Build(t, db)
	tx := testutil.NewTransaction(p).Income("500").OnDate("2024-02-02").Build(t, db)
	params := map[string]string{"uuid": tx.ID}

	t.Run("deletes transaction successfully", func(t *testing.T) {
		req := testutil.AsUser(httptest.NewRequest(http.MethodDelete, "/api/transaction/"+tx.ID, nil), userID, params)
		w := httptest.NewRecorder()

		handler.DeleteTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.TransactionMutation](t, w)
		if response.Transaction.DeletedAt == nil {
			t.Error("Expected deletedAt to be set")
		}
	})

	t.Run("restores transaction successfully", func(t *testing.T) {
		req := testutil.AsUser(httptest.NewRequest(http.MethodPost, "/api/transaction/"+tx.ID+"/restore", nil), userID, params)
		w := httptest.NewRecorder()

		handler.RestoreTransaction(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		response := testutil.DecodeJSON[model.TransactionMutation](t, w)
		if response.Transaction.DeletedAt != nil {
			t.Error("Expected deletedAt to be cleared")
		}
	})

	t.Run("returns 404 when transaction not found", func(t *testing.T) {
		id := testutil.MakeID()
		req := testutil.AsUser(httptest.NewRequest(http.MethodDelete, "/api/transaction/"+id, nil),
			userID, map[string]string{"uuid": id})
		w := httptest.NewRecorder()

		handler.DeleteTransaction(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
		}
	})
}
