package domain

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Role is the capability discriminant on a User.
type Role string

const (
	RoleApplicant Role = "APPLICANT"
	RoleOfficer   Role = "OFFICER"
	RoleManager   Role = "MANAGER"
)

// MaritalStatus is the marital status used by the eligibility policy.
type MaritalStatus string

const (
	Single  MaritalStatus = "SINGLE"
	Married MaritalStatus = "MARRIED"
)

// User is a person known to the engine.
//
// There is one record shape for every role. Officers and managers carry an
// AssignedProject: for an officer it is the project whose registration was
// approved; for a manager it is the project they currently run.
type User struct {
	NRIC            string        `json:"nric"`
	Name            string        `json:"name"`
	Age             int           `json:"age"`
	MaritalStatus   MaritalStatus `json:"marital_status"`
	Role            Role          `json:"role"`
	AssignedProject string        `json:"assigned_project,omitempty"`
}

// CanApply reports whether the user may submit flat applications.
// Officers may apply for flats in projects they do not handle.
func (u User) CanApply() bool {
	return u.Role == RoleApplicant || u.Role == RoleOfficer
}

// IsOfficer reports whether the user may register to handle projects.
func (u User) IsOfficer() bool { return u.Role == RoleOfficer }

// IsManager reports whether the user may create and administer projects.
func (u User) IsManager() bool { return u.Role == RoleManager }

var nricPattern = regexp.MustCompile(`^[STFG][0-9]{7}[A-Z]$`)

var upper = cases.Upper(language.Und)

// NormalizeNRIC trims, NFC-normalizes and upper-cases an NRIC so that lookups
// are insensitive to how the identifier was typed.
func NormalizeNRIC(s string) string {
	return upper.String(norm.NFC.String(strings.TrimSpace(s)))
}

// ValidNRIC reports whether s (after normalization) is a well-formed NRIC:
// a prefix letter S, T, F or G, seven digits and a check letter.
func ValidNRIC(s string) bool {
	return nricPattern.MatchString(NormalizeNRIC(s))
}

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(upper.String(strings.TrimSpace(s))); r {
	case RoleApplicant, RoleOfficer, RoleManager:
		return r, nil
	}
	return "", NewError(CodeInvalidInput, "unknown role %q", s)
}

// ParseMaritalStatus parses a marital status case-insensitively.
func ParseMaritalStatus(s string) (MaritalStatus, error) {
	switch m := MaritalStatus(upper.String(strings.TrimSpace(s))); m {
	case Single, Married:
		return m, nil
	}
	return "", NewError(CodeInvalidInput, "unknown marital status %q", s)
}

// Validate checks the record-level constraints of a user.
func (u User) Validate() error {
	if !ValidNRIC(u.NRIC) {
		return NewError(CodeInvalidInput, "invalid NRIC %q", u.NRIC)
	}
	if u.Age < 0 {
		return NewError(CodeInvalidInput, "user %s: negative age %d", u.NRIC, u.Age)
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return fmt.Errorf("user %s: %w", u.NRIC, err)
	}
	if _, err := ParseMaritalStatus(string(u.MaritalStatus)); err != nil {
		return fmt.Errorf("user %s: %w", u.NRIC, err)
	}
	return nil
}
