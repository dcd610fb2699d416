package testutil

import (
	"time"

	"github.com/roach88/bto/internal/domain"
)

// Today is the fixed "current day" used by fixtures. Tests never read the
// wall clock, so project windows are the same on every run.
var Today = time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

// Day returns Today shifted by offset days.
func Day(offset int) time.Time {
	return Today.AddDate(0, 0, offset)
}

// DateString returns Day(offset) formatted as YYYY-MM-DD.
func DateString(offset int) string {
	return Day(offset).Format(domain.DateLayout)
}
