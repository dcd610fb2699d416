package domain

import (
	"slices"
	"sort"
	"time"
)

// Flat type labels. TwoRoom is the smaller unit category.
const (
	TwoRoom   = "2-Room"
	ThreeRoom = "3-Room"
)

// DateLayout is the calendar-day format used for project windows.
const DateLayout = "2006-01-02"

// FlatType is a unit category within a project together with its unit ledger.
// See ledger.go for the operations that mutate the counters.
type FlatType struct {
	Label          string `json:"label"`
	TotalUnits     int    `json:"total_units"`
	RemainingUnits int    `json:"remaining_units"`
	Price          int64  `json:"price"`
}

// Project is a BTO project and the inventory it offers.
type Project struct {
	Name            string              `json:"name"`
	Neighborhood    string              `json:"neighborhood"`
	OpenDate        time.Time           `json:"open_date"`
	CloseDate       time.Time           `json:"close_date"`
	Visible         bool                `json:"visible"`
	ManagerNRIC     string              `json:"manager_nric"`
	MaxOfficerSlots int                 `json:"max_officer_slots"`
	OfficerSlots    int                 `json:"officer_slots"`
	Officers        []string            `json:"officers"`
	FlatTypes       map[string]FlatType `json:"flat_types"`
}

// ProjectSpec is the input to project creation.
type ProjectSpec struct {
	Name            string         `json:"name"`
	Neighborhood    string         `json:"neighborhood"`
	OpenDate        time.Time      `json:"open_date"`
	CloseDate       time.Time      `json:"close_date"`
	Visible         bool           `json:"visible"`
	MaxOfficerSlots int            `json:"max_officer_slots"`
	FlatTypes       []FlatTypeSpec `json:"flat_types"`
}

// FlatTypeSpec describes one flat type of a new project.
type FlatTypeSpec struct {
	Label string `json:"label"`
	Units int    `json:"units"`
	Price int64  `json:"price"`
}

// Clone returns a deep copy. Stored projects are never mutated in place.
func (p Project) Clone() Project {
	cp := p
	cp.Officers = slices.Clone(p.Officers)
	cp.FlatTypes = make(map[string]FlatType, len(p.FlatTypes))
	for k, v := range p.FlatTypes {
		cp.FlatTypes[k] = v
	}
	return cp
}

// FlatType returns the flat type with the given label.
func (p Project) FlatType(label string) (FlatType, bool) {
	ft, ok := p.FlatTypes[label]
	return ft, ok
}

// FlatTypeLabels returns the project's flat type labels in sorted order.
func (p Project) FlatTypeLabels() []string {
	labels := make([]string, 0, len(p.FlatTypes))
	for label := range p.FlatTypes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// HasOfficer reports whether nric is on the project's officer roster.
func (p Project) HasOfficer(nric string) bool {
	return slices.Contains(p.Officers, nric)
}

// Overlaps reports whether the inclusive window [openDate, closeDate]
// intersects the project's window: openDate ≤ p.CloseDate and
// closeDate ≥ p.OpenDate.
func (p Project) Overlaps(openDate, closeDate time.Time) bool {
	return !Day(openDate).After(Day(p.CloseDate)) && !Day(closeDate).Before(Day(p.OpenDate))
}

// IsOpenOn reports whether day falls inside the project's application window.
func (p Project) IsOpenOn(day time.Time) bool {
	d := Day(day)
	return !d.Before(Day(p.OpenDate)) && !d.After(Day(p.CloseDate))
}

// Day truncates t to a calendar day at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewError(CodeInvalidInput, "invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// Decision is a staff approve/reject verdict.
type Decision string

const (
	Approve Decision = "APPROVE"
	Reject  Decision = "REJECT"
)

// Valid reports whether d is Approve or Reject.
func (d Decision) Valid() bool { return d == Approve || d == Reject }
