package service

import (
	"time"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// AffectedPeriods returns the calendar months whose aggregates a ledger mutation invalidates.
//
// newDate is the transaction date after the mutation. oldDate is the date before it and is nil
// for a create. Soft-delete and restore pass the row's own date for both. The result always
// contains newDate's month first, followed by oldDate's month when it differs.
func AffectedPeriods(newDate time.Time, oldDate *time.Time) []model.Period {
	periods := []model.Period{model.PeriodOf(newDate)}
	if oldDate != nil {
		old := model.PeriodOf(*oldDate)
		if old != periods[0] {
			periods = append(periods, old)
		}
	}
	return periods
}

// MonthsBetween enumerates every calendar month from the month of from through the month of to,
// inclusive. Returns nil when to precedes from.
func MonthsBetween(from, to time.Time) []model.Period {
	first := model.PeriodOf(from)
	last := model.PeriodOf(to)
	if last.Before(first) {
		return nil
	}

	var periods []model.Period
	for p := first; !last.Before(p); p = p.Next() {
		periods = append(periods, p)
	}
	return periods
}
