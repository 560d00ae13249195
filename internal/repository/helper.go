package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Rental-Property-Metrics-Backend/internal/apperrors"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = time.RFC3339
)

// ParseTime parses a date string in "2006-01-02", RFC3339 or "2006-01-02 15:04:05" format.
func ParseTime(str string) (time.Time, error) {
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, str); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse date: %q", str)
}

// parseNullTime converts a nullable timestamp column into a pointer.
func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := ParseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseDateColumn parses a DATE column. Postgres returns a timestamp string for DATE
// columns scanned into a string, so the result is truncated to the calendar day.
func parseDateColumn(str string) (time.Time, error) {
	t, err := ParseTime(str)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func formatNullTimestamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTimestamp(*t)
}

// placeholders returns n comma-separated '?' bind markers.
func placeholders(n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = "?"
	}
	return strings.Join(p, ",")
}

// roundMoney drops the float residue SQLite leaves when it sums NUMERIC columns as REAL.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// storeErr marks a failed store call as transient.
func storeErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, apperrors.ErrStoreUnavailable, err)
}
