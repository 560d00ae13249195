package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/testutil"
)

func datePtr(s string) *time.Time {
	d := testutil.Date(s)
	return &d
}

func TestTransactionRepository_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.NewProperty(testutil.MakeID()).Build(t, db)
	categoryID := testutil.RentCategoryID
	created := time.Date(2024, 3, 2, 8, 30, 0, 0, time.UTC)

	tx := model.Transaction{
		ID:              testutil.MakeID(),
		UserID:          p.UserID,
		PropertyID:      p.ID,
		CategoryID:      &categoryID,
		Type:            model.TransactionTypeIncome,
		Amount:          testutil.D("1500.50"),
		TransactionDate: testutil.Date("2024-03-01"),
		IsRecurring:     true,
		Description:     "March rent",
		CreatedAt:       created,
		UpdatedAt:       created,
	}

	if err := repo.InsertTransaction(ctx, &tx); err != nil {
		t.Fatalf("InsertTransaction() error: %v", err)
	}

	got, err := repo.GetTransactionOnID(ctx, p.UserID, tx.ID)
	if err != nil {
		t.Fatalf("GetTransactionOnID() error: %v", err)
	}

	if !got.Amount.Equal(tx.Amount) || got.Type != tx.Type || !got.TransactionDate.Equal(tx.TransactionDate) {
		t.Errorf("got %+v, want %+v", got, tx)
	}
	if got.CategoryID == nil || *got.CategoryID != categoryID || !got.IsRecurring || got.Description != "March rent" {
		t.Errorf("optional fields lost: %+v", got)
	}
	if !got.CreatedAt.Equal(created) || got.DeletedAt != nil {
		t.Errorf("timestamps = created %s, deleted %v", got.CreatedAt, got.DeletedAt)
	}

	t.Run("another user cannot read it", func(t *testing.T) {
		_, err := repo.GetTransactionOnID(ctx, testutil.MakeID(), tx.ID)
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("error = %v, want ErrTransactionNotFound", err)
		}
	})
}

func TestTransactionRepository_SetDeletedAt(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.NewProperty(testutil.MakeID()).Build(t, db)
	tx := testutil.NewTransaction(p).Build(t, db)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := repo.SetDeletedAt(ctx, p.UserID, tx.ID, &now, now); err != nil {
		t.Fatalf("SetDeletedAt() error: %v", err)
	}
	got, _ := repo.GetTransactionOnID(ctx, p.UserID, tx.ID)
	if got.DeletedAt == nil || !got.DeletedAt.Equal(now) {
		t.Errorf("DeletedAt = %v, want %s", got.DeletedAt, now)
	}

	if err := repo.SetDeletedAt(ctx, p.UserID, tx.ID, nil, now); err != nil {
		t.Fatalf("SetDeletedAt(nil) error: %v", err)
	}
	got, _ = repo.GetTransactionOnID(ctx, p.UserID, tx.ID)
	if got.DeletedAt != nil {
		t.Errorf("DeletedAt = %v, want nil", got.DeletedAt)
	}

	t.Run("unknown row", func(t *testing.T) {
		err := repo.SetDeletedAt(ctx, p.UserID, testutil.MakeID(), nil, now)
		if !errors.Is(err, apperrors.ErrTransactionNotFound) {
			t.Errorf("error = %v, want ErrTransactionNotFound", err)
		}
	})
}

// TestTransactionRepository_SumByType tests the calculator's aggregate query.
//
// WHY: Month boundaries are inclusive on both ends, soft-deleted rows never count, and the
// grouped sum is exact to the cent even though SQLite adds the amounts as floats.
func TestTransactionRepository_SumByType(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.NewProperty(testutil.MakeID()).Build(t, db)
	testutil.NewTransaction(p).Income("100.10").OnDate("2024-02-01").Build(t, db)
	testutil.NewTransaction(p).Income("200.20").OnDate("2024-02-29").Build(t, db)
	testutil.NewTransaction(p).Expense("50").OnDate("2024-02-15").Build(t, db)
	testutil.NewTransaction(p).Expense("999").OnDate("2024-02-15").Deleted().Build(t, db)
	testutil.NewTransaction(p).Income("1").OnDate("2024-03-01").Build(t, db)

	totals, err := repo.SumByType(ctx, p.UserID, p.ID, testutil.Date("2024-02-01"), testutil.Date("2024-02-29"))
	if err != nil {
		t.Fatalf("SumByType() error: %v", err)
	}

	income := totals[model.TransactionTypeIncome]
	if !income.Amount.Equal(testutil.D("300.30")) || income.Count != 2 {
		t.Errorf("income = %+v, want 300.30 over 2 rows", income)
	}
	expense := totals[model.TransactionTypeExpense]
	if !expense.Amount.Equal(testutil.D("50")) || expense.Count != 1 {
		t.Errorf("expense = %+v, want 50 over 1 row", expense)
	}
}

func TestTransactionRepository_GetDateSpan(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.NewProperty(testutil.MakeID()).Build(t, db)
	testutil.NewTransaction(p).OnDate("2023-11-05").Deleted().Build(t, db)
	testutil.NewTransaction(p).OnDate("2024-01-05").Build(t, db)
	testutil.NewTransaction(p).OnDate("2024-04-20").Build(t, db)

	t.Run("ignores deleted rows", func(t *testing.T) {
		span, err := repo.GetDateSpan(ctx, p.UserID, p.ID, nil, nil)
		if err != nil {
			t.Fatalf("GetDateSpan() error: %v", err)
		}
		if !span.Earliest.Equal(testutil.Date("2024-01-05")) || !span.Latest.Equal(testutil.Date("2024-04-20")) {
			t.Errorf("span = %+v", span)
		}
	})

	t.Run("respects bounds", func(t *testing.T) {
		span, err := repo.GetDateSpan(ctx, p.UserID, p.ID, datePtr("2024-02-01"), nil)
		if err != nil {
			t.Fatalf("GetDateSpan() error: %v", err)
		}
		if !span.Earliest.Equal(testutil.Date("2024-04-20")) {
			t.Errorf("Earliest = %s, want 2024-04-20", span.Earliest)
		}
	})

	t.Run("empty when nothing matches", func(t *testing.T) {
		span, err := repo.GetDateSpan(ctx, testutil.MakeID(), p.ID, nil, nil)
		if err != nil {
			t.Fatalf("GetDateSpan() error: %v", err)
		}
		if !span.IsEmpty() {
			t.Errorf("span = %+v, want empty", span)
		}
	})
}

func TestTransactionRepository_GetExpenseTotalsByCategory(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	repo := repository.NewTransactionRepository(db)
	p := testutil.NewProperty(testutil.MakeID()).Build(t, db)
	testutil.NewTransaction(p).Expense("0.10").WithCategory(testutil.InsuranceCategoryID).Build(t, db)
	testutil.NewTransaction(p).Expense("0.20").WithCategory(testutil.InsuranceCategoryID).Build(t, db)
	testutil.NewTransaction(p).Expense("30").Build(t, db)
	testutil.NewTransaction(p).Income("1000").WithCategory(testutil.RentCategoryID).Build(t, db)

	totals, err := repo.GetExpenseTotalsByCategory(ctx, model.TransactionFilter{UserID: p.UserID})
	if err != nil {
		t.Fatalf("GetExpenseTotalsByCategory() error: %v", err)
	}

	if len(totals) != 2 {
		t.Fatalf("got %+v, want uncategorised and Insurance", totals)
	}
	if totals[0].Name != "" || !totals[0].Amount.Equal(testutil.D("30")) {
		t.Errorf("first = %+v, want uncategorised 30", totals[0])
	}
	if totals[1].Name != "Insurance" || !totals[1].Amount.Equal(testutil.D("0.30")) || totals[1].Count != 2 {
		t.Errorf("second = %+v, want Insurance 0.30 over 2 rows", totals[1])
	}
}
