/*
errors.go - Centralized error types for the loan domain

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  The engine clamps or zero-guards domain violations instead of failing, so
  the errors here belong to the boundary: validating records arriving from
  storage or the wire before they reach a calculation.

ERROR CATEGORIES:
  1. Shape errors - Missing loan, unknown interest type
  2. Validation errors - Unparseable dates, non-numeric amounts
  3. Store errors - Record lookups

USAGE:
  Callers can branch with errors.Is():

    if errors.Is(err, loan.ErrLoanNotFound) { ... }

  or unwrap the structured detail:

    var verr *loan.ValidationError
    if errors.As(err, &verr) { ... verr.Field ... }
*/
package loan

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrMissingLoan is returned when a calculation is invoked without a loan.
	// Truly invalid shapes fail fast rather than producing a zero ledger.
	ErrMissingLoan = errors.New("missing loan")

	// ErrInvalidLoan is returned when loan terms fail boundary validation.
	ErrInvalidLoan = errors.New("invalid loan terms")

	// ErrInvalidTransaction is returned when a transaction fails boundary
	// validation.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrLoanNotFound is returned when a referenced loan doesn't exist.
	ErrLoanNotFound = errors.New("loan not found")

	// ErrTransactionNotFound is returned when a referenced transaction
	// doesn't exist.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError reports a field that could not be accepted at the boundary.
// Inside the engine missing numeric fields are tolerated as zero; the
// boundary converts genuinely malformed input into this typed error instead
// of silently coercing it.
type ValidationError struct {
	Field   string
	Value   string
	Message string

	// sentinel this error unwraps to: ErrInvalidLoan or ErrInvalidTransaction
	invalid error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s (got %q)", e.Field, e.Message, e.Value)
}

func (e *ValidationError) Unwrap() error {
	if e.invalid == nil {
		return ErrInvalidTransaction
	}
	return e.invalid
}

func loanFieldError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message, invalid: ErrInvalidLoan}
}

func txFieldError(field, value, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message, invalid: ErrInvalidTransaction}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrLoanNotFound) || errors.Is(err, ErrTransactionNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidLoan) ||
		errors.Is(err, ErrInvalidTransaction) ||
		errors.Is(err, ErrMissingLoan)
}
