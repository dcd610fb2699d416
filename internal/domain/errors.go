package domain

import (
	"errors"
	"fmt"
)

// Error is a recoverable rule violation reported by the engine.
//
// Every rejection the engine produces is an *Error with a stable Code.
// Infrastructure failures (journal writes, SQLite) are never *Error; they are
// wrapped with fmt.Errorf and surface as-is.
//
// Two errors are considered equal by errors.Is when their codes match, so
// callers compare against the exported sentinels:
//
//	if errors.Is(err, domain.ErrNotEligible) { ... }
type Error struct {
	// Code identifies the rule that was violated.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains identifiers involved in the violation.
	Details map[string]string
}

// ErrorCode categorizes rule violations.
type ErrorCode string

const (
	CodeProjectNotFound      ErrorCode = "PROJECT_NOT_FOUND"
	CodeFlatTypeNotFound     ErrorCode = "FLAT_TYPE_NOT_FOUND"
	CodeApplicationNotFound  ErrorCode = "APPLICATION_NOT_FOUND"
	CodeUserNotFound         ErrorCode = "USER_NOT_FOUND"
	CodeRegistrationNotFound ErrorCode = "REGISTRATION_NOT_FOUND"

	CodeNotEligible                 ErrorCode = "NOT_ELIGIBLE"
	CodeAlreadyHasActiveApplication ErrorCode = "ALREADY_HAS_ACTIVE_APPLICATION"
	CodeProjectNotVisible           ErrorCode = "PROJECT_NOT_VISIBLE"
	CodeNoUnitsAvailable            ErrorCode = "NO_UNITS_AVAILABLE"
	CodeNegativeRemaining           ErrorCode = "NEGATIVE_REMAINING"
	CodeNotManaging                 ErrorCode = "NOT_MANAGING"
	CodeNoPendingApplication        ErrorCode = "NO_PENDING_APPLICATION"
	CodeNoWithdrawalRequest         ErrorCode = "NO_WITHDRAWAL_REQUEST"
	CodeWithdrawalAlreadyRequested  ErrorCode = "WITHDRAWAL_ALREADY_REQUESTED"
	CodeNoSuccessfulApplication     ErrorCode = "NO_SUCCESSFUL_APPLICATION"
	CodeAlreadyActiveRegistration   ErrorCode = "ALREADY_ACTIVE_REGISTRATION"
	CodeAlreadyAppliedAsApplicant   ErrorCode = "ALREADY_APPLIED_AS_APPLICANT"
	CodeNotPendingOrProcessed       ErrorCode = "NOT_PENDING_OR_ALREADY_PROCESSED"
	CodeNoSlotsAvailable            ErrorCode = "NO_SLOTS_AVAILABLE"
	CodeOverlappingAssignment       ErrorCode = "OVERLAPPING_ASSIGNMENT"

	CodeRoleNotPermitted  ErrorCode = "ROLE_NOT_PERMITTED"
	CodeHandlingProject   ErrorCode = "HANDLING_PROJECT"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeInvalidInput      ErrorCode = "INVALID_INPUT"
	CodeProjectExists     ErrorCode = "PROJECT_EXISTS"
	CodeProjectInUse      ErrorCode = "PROJECT_IN_USE"
)

// Sentinels for errors.Is comparisons. Only Code is compared.
var (
	ErrProjectNotFound      = &Error{Code: CodeProjectNotFound}
	ErrFlatTypeNotFound     = &Error{Code: CodeFlatTypeNotFound}
	ErrApplicationNotFound  = &Error{Code: CodeApplicationNotFound}
	ErrUserNotFound         = &Error{Code: CodeUserNotFound}
	ErrRegistrationNotFound = &Error{Code: CodeRegistrationNotFound}

	ErrNotEligible                 = &Error{Code: CodeNotEligible}
	ErrAlreadyHasActiveApplication = &Error{Code: CodeAlreadyHasActiveApplication}
	ErrProjectNotVisible           = &Error{Code: CodeProjectNotVisible}
	ErrNoUnitsAvailable            = &Error{Code: CodeNoUnitsAvailable}
	ErrNegativeRemaining           = &Error{Code: CodeNegativeRemaining}
	ErrNotManaging                 = &Error{Code: CodeNotManaging}
	ErrNoPendingApplication        = &Error{Code: CodeNoPendingApplication}
	ErrNoWithdrawalRequest         = &Error{Code: CodeNoWithdrawalRequest}
	ErrWithdrawalAlreadyRequested  = &Error{Code: CodeWithdrawalAlreadyRequested}
	ErrNoSuccessfulApplication     = &Error{Code: CodeNoSuccessfulApplication}
	ErrAlreadyActiveRegistration   = &Error{Code: CodeAlreadyActiveRegistration}
	ErrAlreadyAppliedAsApplicant   = &Error{Code: CodeAlreadyAppliedAsApplicant}
	ErrNotPendingOrProcessed       = &Error{Code: CodeNotPendingOrProcessed}
	ErrNoSlotsAvailable            = &Error{Code: CodeNoSlotsAvailable}
	ErrOverlappingAssignment       = &Error{Code: CodeOverlappingAssignment}

	ErrRoleNotPermitted  = &Error{Code: CodeRoleNotPermitted}
	ErrHandlingProject   = &Error{Code: CodeHandlingProject}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition}
	ErrInvalidInput      = &Error{Code: CodeInvalidInput}
	ErrProjectExists     = &Error{Code: CodeProjectExists}
	ErrProjectInUse      = &Error{Code: CodeProjectInUse}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewError creates an Error with a formatted message.
func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// With returns a copy of e with an additional detail attached.
func (e *Error) With(key, value string) *Error {
	cp := *e
	cp.Details = make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// CodeOf extracts the ErrorCode from err.
// Returns "" if err is nil or not a rule violation.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsNotFound reports whether err is any of the not-found codes.
func IsNotFound(err error) bool {
	switch CodeOf(err) {
	case CodeProjectNotFound, CodeFlatTypeNotFound, CodeApplicationNotFound,
		CodeUserNotFound, CodeRegistrationNotFound:
		return true
	}
	return false
}

// IsRuleViolation reports whether err is a domain rule violation as opposed
// to an infrastructure failure.
func IsRuleViolation(err error) bool {
	return CodeOf(err) != ""
}
