package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/api/request"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// TransactionService handles ledger business logic. Every mutation is followed by a
// reconciliation of exactly the periods it invalidated.
type TransactionService struct {
	transactionRepo       *repository.TransactionRepository
	propertyRepo          *repository.PropertyRepository
	categoryRepo          *repository.CategoryRepository
	reconciliationService *ReconciliationService
	now                   func() time.Time
}

// NewTransactionService creates a new TransactionService with the provided repository dependencies.
func NewTransactionService(
	transactionRepo *repository.TransactionRepository,
	propertyRepo *repository.PropertyRepository,
	categoryRepo *repository.CategoryRepository,
	reconciliationService *ReconciliationService,
) *TransactionService {
	return &TransactionService{
		transactionRepo:       transactionRepo,
		propertyRepo:          propertyRepo,
		categoryRepo:          categoryRepo,
		reconciliationService: reconciliationService,
		now:                   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the clock used for timestamps and the future-date check.
func (s *TransactionService) WithClock(now func() time.Time) *TransactionService {
	s.now = now
	return s
}

// GetTransactions retrieves the user's ledger rows matching filter.
// Every property in the filter must be owned by the user.
func (s *TransactionService) GetTransactions(ctx context.Context, filter model.TransactionFilter) ([]model.Transaction, error) {
	for _, id := range filter.PropertyIDs {
		if _, err := s.propertyRepo.GetPropertyOnID(ctx, filter.UserID, id); err != nil {
			return nil, err
		}
	}
	return s.transactionRepo.GetTransactions(ctx, filter)
}

// GetTransaction retrieves a single transaction of the user, including soft-deleted rows.
func (s *TransactionService) GetTransaction(ctx context.Context, userID, transactionID string) (model.Transaction, error) {
	return s.transactionRepo.GetTransactionOnID(ctx, userID, transactionID)
}

// CreateTransaction stores a new ledger row and reconciles its month.
//
// The property must be owned by the user, the date may not be after today, and a category,
// when given, must exist, be active and have the same type as the transaction.
// The amount is rounded to two decimals before it is stored.
func (s *TransactionService) CreateTransaction(ctx context.Context, userID string, req request.CreateTransactionRequest) (model.TransactionMutation, error) {
	transactionDate, err := time.Parse("2006-01-02", req.TransactionDate)
	if err != nil {
		return model.TransactionMutation{}, err
	}

	if err := s.checkNotFuture(transactionDate); err != nil {
		return model.TransactionMutation{}, err
	}

	if _, err := s.propertyRepo.GetPropertyOnID(ctx, userID, req.PropertyID); err != nil {
		return model.TransactionMutation{}, err
	}

	amount, err := checkAmount(req.Amount)
	if err != nil {
		return model.TransactionMutation{}, err
	}

	txType := model.TransactionType(req.Type)
	if err := s.checkCategory(ctx, req.CategoryID, txType); err != nil {
		return model.TransactionMutation{}, err
	}

	now := s.now()
	transaction := model.Transaction{
		ID:              uuid.New().String(),
		UserID:          userID,
		PropertyID:      req.PropertyID,
		CategoryID:      req.CategoryID,
		Type:            txType,
		Amount:          amount,
		TransactionDate: transactionDate,
		IsRecurring:     req.IsRecurring,
		Description:     req.Description,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.transactionRepo.InsertTransaction(ctx, &transaction); err != nil {
		return model.TransactionMutation{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	periods := AffectedPeriods(transaction.TransactionDate, nil)
	s.reconcileAfterMutation(ctx, userID, transaction.PropertyID, periods)

	return model.TransactionMutation{Transaction: transaction, ReconciledPeriods: periods}, nil
}

// UpdateTransaction applies the non-nil fields of req to an existing, non-deleted transaction
// and reconciles the periods the change invalidated.
//
// When the row moves to another property, the old property's old month is reconciled as well
// as the new property's new month. An empty categoryId clears the category.
func (s *TransactionService) UpdateTransaction(ctx context.Context, userID, transactionID string, req request.UpdateTransactionRequest) (model.TransactionMutation, error) {
	existing, err := s.transactionRepo.GetTransactionOnID(ctx, userID, transactionID)
	if err != nil {
		return model.TransactionMutation{}, err
	}
	if existing.IsDeleted() {
		return model.TransactionMutation{}, apperrors.ErrTransactionNotFound
	}

	updated := existing

	if req.PropertyID != nil && *req.PropertyID != existing.PropertyID {
		if _, err := s.propertyRepo.GetPropertyOnID(ctx, userID, *req.PropertyID); err != nil {
			return model.TransactionMutation{}, err
		}
		updated.PropertyID = *req.PropertyID
	}

	if req.TransactionDate != nil {
		transactionDate, err := time.Parse("2006-01-02", *req.TransactionDate)
		if err != nil {
			return model.TransactionMutation{}, err
		}
		if !transactionDate.Equal(existing.TransactionDate) {
			if err := s.checkNotFuture(transactionDate); err != nil {
				return model.TransactionMutation{}, err
			}
		}
		updated.TransactionDate = transactionDate
	}

	if req.Type != nil {
		updated.Type = model.TransactionType(*req.Type)
	}

	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			updated.CategoryID = nil
		} else {
			categoryID := *req.CategoryID
			updated.CategoryID = &categoryID
		}
	}

	if req.CategoryID != nil || req.Type != nil {
		if err := s.checkCategory(ctx, updated.CategoryID, updated.Type); err != nil {
			return model.TransactionMutation{}, err
		}
	}

	if req.Amount != nil {
		amount, err := checkAmount(*req.Amount)
		if err != nil {
			return model.TransactionMutation{}, err
		}
		updated.Amount = amount
	}
	if req.IsRecurring != nil {
		updated.IsRecurring = *req.IsRecurring
	}
	if req.Description != nil {
		updated.Description = *req.Description
	}

	updated.UpdatedAt = s.now()

	if err := s.transactionRepo.UpdateTransaction(ctx, &updated); err != nil {
		return model.TransactionMutation{}, fmt.Errorf("failed to update transaction: %w", err)
	}

	var periods []model.Period
	if updated.PropertyID == existing.PropertyID {
		periods = AffectedPeriods(updated.TransactionDate, &existing.TransactionDate)
		s.reconcileAfterMutation(ctx, userID, updated.PropertyID, periods)
	} else {
		newPeriods := AffectedPeriods(updated.TransactionDate, nil)
		oldPeriods := AffectedPeriods(existing.TransactionDate, nil)
		s.reconcileAfterMutation(ctx, userID, updated.PropertyID, newPeriods)
		s.reconcileAfterMutation(ctx, userID, existing.PropertyID, oldPeriods)
		periods = append(newPeriods, oldPeriods...)
	}

	return model.TransactionMutation{Transaction: updated, ReconciledPeriods: periods}, nil
}

// DeleteTransaction soft-deletes a transaction and reconciles its month.
// Deleting an already deleted row changes nothing.
func (s *TransactionService) DeleteTransaction(ctx context.Context, userID, transactionID string) (model.TransactionMutation, error) {
	existing, err := s.transactionRepo.GetTransactionOnID(ctx, userID, transactionID)
	if err != nil {
		return model.TransactionMutation{}, err
	}
	if existing.IsDeleted() {
		return model.TransactionMutation{Transaction: existing, ReconciledPeriods: []model.Period{}}, nil
	}

	now := s.now()
	if err := s.transactionRepo.SetDeletedAt(ctx, userID, transactionID, &now, now); err != nil {
		return model.TransactionMutation{}, fmt.Errorf("failed to delete transaction: %w", err)
	}
	existing.DeletedAt = &now
	existing.UpdatedAt = now

	periods := AffectedPeriods(existing.TransactionDate, &existing.TransactionDate)
	s.reconcileAfterMutation(ctx, userID, existing.PropertyID, periods)

	return model.TransactionMutation{Transaction: existing, ReconciledPeriods: periods}, nil
}

// RestoreTransaction clears the soft-delete tombstone of a transaction and reconciles its month.
// Restoring a row that is not deleted changes nothing.
func (s *TransactionService) RestoreTransaction(ctx context.Context, userID, transactionID string) (model.TransactionMutation, error) {
	existing, err := s.transactionRepo.GetTransactionOnID(ctx, userID, transactionID)
	if err != nil {
		return model.TransactionMutation{}, err
	}
	if !existing.IsDeleted() {
		return model.TransactionMutation{Transaction: existing, ReconciledPeriods: []model.Period{}}, nil
	}

	now := s.now()
	if err := s.transactionRepo.SetDeletedAt(ctx, userID, transactionID, nil, now); err != nil {
		return model.TransactionMutation{}, fmt.Errorf("failed to restore transaction: %w", err)
	}
	existing.DeletedAt = nil
	existing.UpdatedAt = now

	periods := AffectedPeriods(existing.TransactionDate, &existing.TransactionDate)
	s.reconcileAfterMutation(ctx, userID, existing.PropertyID, periods)

	return model.TransactionMutation{Transaction: existing, ReconciledPeriods: periods}, nil
}

func (s *TransactionService) checkNotFuture(date time.Time) error {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if date.After(today) {
		return fmt.Errorf("%w: %s", apperrors.ErrFutureDate, date.Format("2006-01-02"))
	}
	return nil
}

// checkAmount rounds amount to the ledger precision and rejects it unless the result is positive.
func checkAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	rounded := normaliseMoney(amount)
	if !rounded.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount %s is below 0.01", apperrors.ErrInvalidParameter, amount)
	}
	return rounded, nil
}

func (s *TransactionService) checkCategory(ctx context.Context, categoryID *string, txType model.TransactionType) error {
	if categoryID == nil {
		return nil
	}

	category, err := s.categoryRepo.GetCategoryOnID(ctx, *categoryID)
	if err != nil {
		return err
	}
	if !category.IsActive {
		return apperrors.ErrCategoryNotFound
	}
	if category.Type != txType {
		return fmt.Errorf("%w: category %s is %s", apperrors.ErrCategoryTypeMismatch, category.Name, category.Type)
	}
	return nil
}

// reconcileAfterMutation refreshes the invalidated aggregates. The ledger write has already
// succeeded, so a failure here is logged and left for the next reconcile run.
func (s *TransactionService) reconcileAfterMutation(ctx context.Context, userID, propertyID string, periods []model.Period) {
	if err := s.reconciliationService.ReconcilePeriods(ctx, userID, propertyID, periods); err != nil {
		log.Printf("reconciliation after ledger mutation failed for property %s: %v", propertyID, err)
	}
}
