package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/testutil"
)

func periodsEqual(got []model.Period, want ...model.Period) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func strRef(s string) *string { return &s }

// TestTransactionService_CreateTransaction tests ledger inserts.
//
// WHY: A create must leave the aggregate of its month consistent without an explicit
// reconcile call, and every guard must reject the row before anything is written.
func TestTransactionService_CreateTransaction(t *testing.T) {
	ctx := context.Background()
	now := testutil.FixedClock("2024-03-20T09:00:00Z")

	t.Run("reconciles the transaction month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		testutil.NewTransaction(p).Expense("200").OnDate("2024-03-02").Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		mutation, err := svc.CreateTransaction(ctx, userID, request.CreateTransactionRequest{
			PropertyID:      p.ID,
			CategoryID:      strRef(testutil.RentCategoryID),
			Type:            "INCOME",
			Amount:          testutil.D("1500.005"),
			TransactionDate: "2024-03-01",
			Description:     "March rent",
		})
		if err != nil {
			t.Fatalf("CreateTransaction() error: %v", err)
		}

		if !mutation.Transaction.Amount.Equal(testutil.D("1500.01")) {
			t.Errorf("Amount = %s, want rounded 1500.01", mutation.Transaction.Amount)
		}
		if !periodsEqual(mutation.ReconciledPeriods, model.Period{Year: 2024, Month: 3}) {
			t.Errorf("ReconciledPeriods = %v, want [2024-03]", mutation.ReconciledPeriods)
		}

		stored, err := storedMetric(t, db, p, 2024, 3)
		if err != nil {
			t.Fatalf("expected a reconciled March row: %v", err)
		}
		if !stored.CashFlow.Equal(testutil.D("1300.01")) || stored.TransactionCount != 2 {
			t.Errorf("stored = %+v, want cash flow 1300.01 over 2 rows", stored.MetricTotals)
		}
	})

	t.Run("today is accepted", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		_, err := svc.CreateTransaction(ctx, userID, request.CreateTransactionRequest{
			PropertyID:      p.ID,
			Type:            "EXPENSE",
			Amount:          testutil.D("10"),
			TransactionDate: "2024-03-20",
		})
		if err != nil {
			t.Errorf("CreateTransaction() error: %v", err)
		}
	})

	tests := []struct {
		name    string
		req     func(p model.Property, inactive model.Category) request.CreateTransactionRequest
		wantErr error
	}{
		{
			name: "future date",
			req: func(p model.Property, _ model.Category) request.CreateTransactionRequest {
				return request.CreateTransactionRequest{PropertyID: p.ID, Type: "INCOME", Amount: testutil.D("1"), TransactionDate: "2024-03-21"}
			},
			wantErr: apperrors.ErrFutureDate,
		},
		{
			name: "category type mismatch",
			req: func(p model.Property, _ model.Category) request.CreateTransactionRequest {
				return request.CreateTransactionRequest{PropertyID: p.ID, CategoryID: strRef(testutil.RepairsCategoryID), Type: "INCOME", Amount: testutil.D("1"), TransactionDate: "2024-03-01"}
			},
			wantErr: apperrors.ErrCategoryTypeMismatch,
		},
		{
			name: "inactive category",
			req: func(p model.Property, inactive model.Category) request.CreateTransactionRequest {
				return request.CreateTransactionRequest{PropertyID: p.ID, CategoryID: &inactive.ID, Type: "EXPENSE", Amount: testutil.D("1"), TransactionDate: "2024-03-01"}
			},
			wantErr: apperrors.ErrCategoryNotFound,
		},
		{
			name: "unknown category",
			req: func(p model.Property, _ model.Category) request.CreateTransactionRequest {
				return request.CreateTransactionRequest{PropertyID: p.ID, CategoryID: strRef(testutil.MakeID()), Type: "EXPENSE", Amount: testutil.D("1"), TransactionDate: "2024-03-01"}
			},
			wantErr: apperrors.ErrCategoryNotFound,
		},
		{
			name: "amount rounds to zero",
			req: func(p model.Property, _ model.Category) request.CreateTransactionRequest {
				return request.CreateTransactionRequest{PropertyID: p.ID, Type: "INCOME", Amount: testutil.D("0.004"), TransactionDate: "2024-03-01"}
			},
			wantErr: apperrors.ErrInvalidParameter,
		},
		{
			name: "property of another user",
			req: func(_ model.Property, _ model.Category) request.CreateTransactionRequest {
				return request.CreateTransactionRequest{PropertyID: testutil.MakeID(), Type: "INCOME", Amount: testutil.D("1"), TransactionDate: "2024-03-01"}
			},
			wantErr: apperrors.ErrPropertyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testutil.SetupTestDB(t)
			userID := testutil.MakeID()
			p := testutil.NewProperty(userID).Build(t, db)
			inactive := testutil.NewCategory().Inactive().Build(t, db)

			svc := testutil.NewTestTransactionService(t, db).WithClock(now)
			_, err := svc.CreateTransaction(ctx, userID, tt.req(p, inactive))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			testutil.AssertRowCount(t, db, `"transaction"`, 0)
			testutil.AssertRowCount(t, db, "monthly_metric", 0)
		})
	}
}

// TestTransactionService_UpdateTransaction tests ledger edits.
//
// WHY: Moving a row between months or properties must refresh both the month it left and
// the month it entered, or the old month keeps counting it.
func TestTransactionService_UpdateTransaction(t *testing.T) {
	ctx := context.Background()
	now := testutil.FixedClock("2024-06-01T09:00:00Z")

	t.Run("date move reconciles new and old month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(p).Income("1000").OnDate("2024-03-31").Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		if _, err := svc.UpdateTransaction(ctx, userID, tx.ID, request.UpdateTransactionRequest{}); err != nil {
			t.Fatalf("no-op UpdateTransaction() error: %v", err)
		}

		mutation, err := svc.UpdateTransaction(ctx, userID, tx.ID, request.UpdateTransactionRequest{
			TransactionDate: strRef("2024-04-01"),
		})
		if err != nil {
			t.Fatalf("UpdateTransaction() error: %v", err)
		}

		if !periodsEqual(mutation.ReconciledPeriods, model.Period{Year: 2024, Month: 4}, model.Period{Year: 2024, Month: 3}) {
			t.Errorf("ReconciledPeriods = %v, want [2024-04 2024-03]", mutation.ReconciledPeriods)
		}

		march, err := storedMetric(t, db, p, 2024, 3)
		if err != nil || !march.IsZero() {
			t.Errorf("March = %+v (err %v), want zeroed aggregate", march.MetricTotals, err)
		}
		april, err := storedMetric(t, db, p, 2024, 4)
		if err != nil || !april.TotalIncome.Equal(testutil.D("1000")) {
			t.Errorf("April = %+v (err %v), want income 1000", april.MetricTotals, err)
		}
	})

	t.Run("property move reconciles both properties", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		from := testutil.NewProperty(userID).Build(t, db)
		to := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(from).Income("900").OnDate("2024-02-10").Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		if _, err := svc.UpdateTransaction(ctx, userID, tx.ID, request.UpdateTransactionRequest{PropertyID: &to.ID}); err != nil {
			t.Fatalf("UpdateTransaction() error: %v", err)
		}

		old, err := storedMetric(t, db, from, 2024, 2)
		if err != nil || !old.IsZero() {
			t.Errorf("old property = %+v (err %v), want zeroed aggregate", old.MetricTotals, err)
		}
		moved, err := storedMetric(t, db, to, 2024, 2)
		if err != nil || !moved.TotalIncome.Equal(testutil.D("900")) {
			t.Errorf("new property = %+v (err %v), want income 900", moved.MetricTotals, err)
		}
	})

	t.Run("type change revalidates the category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(p).Income("900").WithCategory(testutil.RentCategoryID).Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		_, err := svc.UpdateTransaction(ctx, userID, tx.ID, request.UpdateTransactionRequest{Type: strRef("EXPENSE")})
		if !errors.Is(err, apperrors.ErrCategoryTypeMismatch) {
			t.Errorf("error = %v, want ErrCategoryTypeMismatch", err)
		}
	})

	t.Run("amount that rounds to zero is rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(p).Income("1000").OnDate("2024-03-10").Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		tiny := testutil.D("0.004")
		_, err := svc.UpdateTransaction(ctx, userID, tx.ID, request.UpdateTransactionRequest{Amount: &tiny})
		if !errors.Is(err, apperrors.ErrInvalidParameter) {
			t.Fatalf("error = %v, want ErrInvalidParameter", err)
		}

		stored, err := svc.GetTransaction(ctx, userID, tx.ID)
		if err != nil {
			t.Fatalf("GetTransaction() error: %v", err)
		}
		if !stored.Amount.Equal(testutil.D("1000")) {
			t.Errorf("stored amount = %s, want 1000", stored.Amount)
		}
	})

	t.Run("deleted transaction is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		userID := testutil.MakeID()
		p := testutil.NewProperty(userID).Build(t, db)
		tx := testutil.NewTransaction(p).Deleted().Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		amount := decimal.NewFromInt(5)
		_, err := svc.UpdateTransaction(ctx, userID, tx.ID, request.UpdateTransactionRequest{Amount: &amount})
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("error = %v, want ErrTransactionNotFound", err)
		}
	})

	t.Run("transaction of another user is not found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		p := testutil.NewProperty(testutil.MakeID()).Build(t, db)
		tx := testutil.NewTransaction(p).Build(t, db)

		svc := testutil.NewTestTransactionService(t, db).WithClock(now)
		_, err := svc.UpdateTransaction(ctx, testutil.MakeID(), tx.ID, request.UpdateTransactionRequest{Description: strRef("x")})
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("error = %v, want ErrTransactionNotFound", err)
		}
	})
}

// TestTransactionService_DeleteRestore tests the soft-delete lifecycle.
//
// WHY: Tombstoned rows stay readable by id but never count, and restoring one brings its
// contribution back in the same call.
func TestTransactionService_DeleteRestore(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	userID := testutil.MakeID()
	p := testutil.NewProperty(userID).Build(t, db)
	tx := testutil.NewTransaction(p).Income("750").OnDate("2024-05-05").Build(t, db)

	svc := testutil.NewTestTransactionService(t, db).WithClock(testutil.FixedClock("2024-06-01T09:00:00Z"))

	deleted, err := svc.DeleteTransaction(ctx, userID, tx.ID)
	if err != nil {
		t.Fatalf("DeleteTransaction() error: %v", err)
	}
	if !deleted.Transaction.IsDeleted() || len(deleted.ReconciledPeriods) != 1 {
		t.Errorf("delete mutation = %+v", deleted)
	}
	if m, err := storedMetric(t, db, p, 2024, 5); err != nil || !m.IsZero() {
		t.Errorf("May after delete = %+v (err %v), want zero", m.MetricTotals, err)
	}

	t.Run("deleted row stays readable", func(t *testing.T) {
		got, err := svc.GetTransaction(ctx, userID, tx.ID)
		if err != nil || !got.IsDeleted() {
			t.Errorf("GetTransaction() = %+v, %v", got, err)
		}
	})

	t.Run("deleting twice is a no-op", func(t *testing.T) {
		again, err := svc.DeleteTransaction(ctx, userID, tx.ID)
		if err != nil {
			t.Fatalf("DeleteTransaction() error: %v", err)
		}
		if len(again.ReconciledPeriods) != 0 {
			t.Errorf("ReconciledPeriods = %v, want none", again.ReconciledPeriods)
		}
	})

	t.Run("restore brings the contribution back", func(t *testing.T) {
		restored, err := svc.RestoreTransaction(ctx, userID, tx.ID)
		if err != nil {
			t.Fatalf("RestoreTransaction() error: %v", err)
		}
		if restored.Transaction.IsDeleted() {
			t.Error("expected tombstone to be cleared")
		}
		m, err := storedMetric(t, db, p, 2024, 5)
		if err != nil || !m.TotalIncome.Equal(testutil.D("750")) {
			t.Errorf("May after restore = %+v (err %v), want income 750", m.MetricTotals, err)
		}
	})

	t.Run("restoring a live row is a no-op", func(t *testing.T) {
		again, err := svc.RestoreTransaction(ctx, userID, tx.ID)
		if err != nil {
			t.Fatalf("RestoreTransaction() error: %v", err)
		}
		if len(again.ReconciledPeriods) != 0 {
			t.Errorf("ReconciledPeriods = %v, want none", again.ReconciledPeriods)
		}
	})
}

// TestTransactionService_GetTransactions tests ledger listing.
func TestTransactionService_GetTransactions(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	userID := testutil.MakeID()
	p := testutil.NewProperty(userID).Build(t, db)
	testutil.NewTransaction(p).OnDate("2024-01-10").Build(t, db)
	testutil.NewTransaction(p).OnDate("2024-02-10").Deleted().Build(t, db)
	foreign := testutil.NewProperty(testutil.MakeID()).Build(t, db)

	svc := testutil.NewTestTransactionService(t, db)

	t.Run("excludes deleted rows by default", func(t *testing.T) {
		got, err := svc.GetTransactions(ctx, model.TransactionFilter{UserID: userID})
		if err != nil {
			t.Fatalf("GetTransactions() error: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("got %d transactions, want 1", len(got))
		}
	})

	t.Run("includes deleted rows on request", func(t *testing.T) {
		got, err := svc.GetTransactions(ctx, model.TransactionFilter{UserID: userID, IncludeDeleted: true})
		if err != nil {
			t.Fatalf("GetTransactions() error: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %d transactions, want 2", len(got))
		}
	})

	t.Run("rejects a foreign property filter", func(t *testing.T) {
		_, err := svc.GetTransactions(ctx, model.TransactionFilter{UserID: userID, PropertyIDs: []string{foreign.ID}})
		if !errors.Is(err, apperrors.ErrPropertyNotFound) {
			t.Errorf("error = %v, want ErrPropertyNotFound", err)
		}
	})
}
