// Package eligibility decides which flat types a person may apply for.
//
// The rules depend only on marital status, age and the flat type label:
//
//	single,  age >= 35  ->  2-Room only
//	married, age >= 21  ->  any flat type
//	anyone else         ->  nothing
package eligibility

import (
	"github.com/roach88/bto/internal/domain"
)

// Age thresholds.
const (
	MinSingleAge  = 35
	MinMarriedAge = 21
)

// IsEligible reports whether a person with the given marital status and age
// may apply for the flat type label. It is pure and total.
func IsEligible(status domain.MaritalStatus, age int, label string) bool {
	switch status {
	case domain.Single:
		return age >= MinSingleAge && label == domain.TwoRoom
	case domain.Married:
		return age >= MinMarriedAge
	default:
		return false
	}
}

// ForUser applies IsEligible to a user whose role allows applying.
// Managers are never eligible.
func ForUser(u domain.User, label string) bool {
	return u.CanApply() && IsEligible(u.MaritalStatus, u.Age, label)
}

// EligibleLabels returns the sorted labels of p that u may apply for.
func EligibleLabels(u domain.User, p domain.Project) []string {
	var labels []string
	for _, label := range p.FlatTypeLabels() {
		if ForUser(u, label) {
			labels = append(labels, label)
		}
	}
	return labels
}
