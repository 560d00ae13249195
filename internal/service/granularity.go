package service

import (
	"fmt"
	"time"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/model"
)

// DefaultMaxTrendBuckets caps the number of buckets a trend may contain.
const DefaultMaxTrendBuckets = 400

// Window sizes, in inclusive days, up to which each granularity is selected.
const (
	dailyWindowDays   = 31
	weeklyWindowDays  = 182
	monthlyWindowDays = 1096
)

// SelectGranularity picks the finest granularity that keeps a window of from..to readable.
// A multi-year window never selects daily.
func SelectGranularity(from, to time.Time) model.Granularity {
	days := windowDays(from, to)
	switch {
	case days <= dailyWindowDays:
		return model.GranularityDaily
	case days <= weeklyWindowDays:
		return model.GranularityWeekly
	case days <= monthlyWindowDays:
		return model.GranularityMonthly
	default:
		return model.GranularityYearly
	}
}

// ValidateGranularity rejects unknown granularities and any granularity that would split
// from..to into more than maxBuckets buckets. It never truncates.
func ValidateGranularity(g model.Granularity, from, to time.Time, maxBuckets int) error {
	if !model.ValidGranularities[g] {
		return fmt.Errorf("%w: %q", apperrors.ErrInvalidGranularity, g)
	}
	if maxBuckets <= 0 {
		maxBuckets = DefaultMaxTrendBuckets
	}
	if n := CountBuckets(g, from, to); n > maxBuckets {
		return fmt.Errorf("%w: %s over %s..%s is %d buckets, maximum is %d",
			apperrors.ErrTooManyBuckets, g, from.Format("2006-01-02"), to.Format("2006-01-02"), n, maxBuckets)
	}
	return nil
}

// BucketStart returns the first day of the bucket containing t.
// Weekly buckets are ISO weeks starting on Monday.
func BucketStart(g model.Granularity, t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case model.GranularityWeekly:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case model.GranularityMonthly:
		return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	case model.GranularityYearly:
		return time.Date(day.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// NextBucket returns the start of the bucket following the one starting at start.
func NextBucket(g model.Granularity, start time.Time) time.Time {
	switch g {
	case model.GranularityWeekly:
		return start.AddDate(0, 0, 7)
	case model.GranularityMonthly:
		return start.AddDate(0, 1, 0)
	case model.GranularityYearly:
		return start.AddDate(1, 0, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// BucketEnd returns the last day of the bucket starting at start.
func BucketEnd(g model.Granularity, start time.Time) time.Time {
	return NextBucket(g, start).AddDate(0, 0, -1)
}

// BucketLabel formats the bucket starting at start: 2024-03-15, 2024-W11, 2024-03 or 2024.
func BucketLabel(g model.Granularity, start time.Time) string {
	switch g {
	case model.GranularityWeekly:
		year, week := start.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case model.GranularityMonthly:
		return start.Format("2006-01")
	case model.GranularityYearly:
		return start.Format("2006")
	default:
		return start.Format("2006-01-02")
	}
}

// CountBuckets returns how many buckets of g cover from..to inclusive.
func CountBuckets(g model.Granularity, from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	first := BucketStart(g, from)
	last := BucketStart(g, to)
	switch g {
	case model.GranularityWeekly:
		return windowDays(first, last)/7 + 1
	case model.GranularityMonthly:
		return (last.Year()-first.Year())*12 + int(last.Month()) - int(first.Month()) + 1
	case model.GranularityYearly:
		return last.Year() - first.Year() + 1
	default:
		return windowDays(first, last)
	}
}

// windowDays counts the calendar days from..to, both inclusive.
func windowDays(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours()/24) + 1
}
