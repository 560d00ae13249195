package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/repository"
)

// ReconcileScheduler periodically reconciles and cleans up every user owning a property.
type ReconcileScheduler struct {
	cron                  *cron.Cron
	propertyRepo          *repository.PropertyRepository
	reconciliationService *ReconciliationService
	runTimeout            time.Duration
}

// NewReconcileScheduler parses schedule (standard five-field cron syntax or a descriptor
// such as "@daily") and registers the reconcile job. The scheduler is not started.
func NewReconcileScheduler(
	schedule string,
	propertyRepo *repository.PropertyRepository,
	reconciliationService *ReconciliationService,
	runTimeout time.Duration,
) (*ReconcileScheduler, error) {
	s := &ReconcileScheduler{
		cron:                  cron.New(),
		propertyRepo:          propertyRepo,
		reconciliationService: reconciliationService,
		runTimeout:            runTimeout,
	}

	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start runs the scheduler in its own goroutine.
func (s *ReconcileScheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling new runs and waits for a running one to finish or ctx to expire.
func (s *ReconcileScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}

func (s *ReconcileScheduler) run() {
	ctx := context.Background()
	if s.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.runTimeout)
		defer cancel()
	}

	if err := s.RunOnce(ctx); err != nil {
		log.Printf("scheduled reconcile failed: %v", err)
	}
}

// RunOnce reconciles every property of every user and removes empty aggregates.
// A failing user is logged and does not stop the others.
func (s *ReconcileScheduler) RunOnce(ctx context.Context) error {
	userIDs, err := s.propertyRepo.GetUserIDsWithProperties(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	months, deleted := 0, int64(0)

	for _, userID := range userIDs {
		summary, err := s.reconciliationService.ReconcileUser(ctx, userID, nil, nil)
		if err != nil {
			log.Printf("scheduled reconcile failed for user %s: %v", userID, err)
			continue
		}
		months += summary.UpdatedMonths

		n, err := s.reconciliationService.Cleanup(ctx, userID)
		if err != nil {
			log.Printf("scheduled cleanup failed for user %s: %v", userID, err)
			continue
		}
		deleted += n
	}

	log.Printf("Scheduled reconcile: %d users, %d months, %d empty rows removed in %s",
		len(userIDs), months, deleted, time.Since(start))

	return nil
}
