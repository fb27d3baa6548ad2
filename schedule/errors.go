/*
errors.go - Centralized error types for the schedule engine

PURPOSE:
  All engine error kinds in one place. Callers match with errors.Is;
  structured variants carry the offending values and Unwrap to the
  sentinel.

ERROR CATEGORIES:
  1. Posting errors  - Invalid payment / rate mutations
  2. Range errors    - Dates outside the schedule window
  3. Lookup errors   - No installment covers a requested date

PROPAGATION:
  Every error aborts only the operation that raised it. Pure validation
  failures leave the ledger and timelines untouched. Style generators that
  post repayments before hitting bad input may leave the ledger partially
  populated - there is no transactional rollback.
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNegativeAmount is returned when a negative payment is posted.
	// Repayments may be negative - they act as corrections.
	ErrNegativeAmount = errors.New("negative payment amount")

	// ErrNegativeRate is returned when a negative annual rate is posted.
	ErrNegativeRate = errors.New("negative interest rate")

	// ErrInvalidGranularity is returned for an unrecognized period unit.
	ErrInvalidGranularity = errors.New("invalid granularity")

	// ErrPeriodOutOfRange is returned when a calendar period is requested
	// for a date wholly outside the schedule window.
	ErrPeriodOutOfRange = errors.New("period outside schedule range")

	// ErrInstallmentNotFound is returned when no installment covers a date.
	ErrInstallmentNotFound = errors.New("no installment covers date")

	// ErrInvalidDateRange is returned when the schedule window is empty or
	// the first-repayment date falls outside it.
	ErrInvalidDateRange = errors.New("invalid date range")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OutOfRangeError reports a date that lies outside the schedule window.
type OutOfRangeError struct {
	Date  Date
	Start Date
	End   Date
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("date %s outside schedule [%s, %s]", e.Date, e.Start, e.End)
}

func (e *OutOfRangeError) Unwrap() error { return ErrPeriodOutOfRange }

// InstallmentNotFoundError reports a lookup date no installment covers.
type InstallmentNotFoundError struct {
	Date Date
}

func (e *InstallmentNotFoundError) Error() string {
	return fmt.Sprintf("no installment covers %s", e.Date)
}

func (e *InstallmentNotFoundError) Unwrap() error { return ErrInstallmentNotFound }
