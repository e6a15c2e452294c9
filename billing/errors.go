/*
errors.go - Centralized error types for the billing core

PURPOSE:
  All error types in one place for consistency and discoverability.
  Expected outcomes (a rejected payment, a missing account) travel as
  explicit values; errors are never used for normal control flow.

ERROR CATEGORIES:
  1. Validation errors - Rejected mutations (invalid payment amount)
  2. Store errors - Repository-level failures
  3. Consistency errors - Defensive checks that indicate bugs
*/
package billing

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a payment amount is zero or
	// negative. The account is left unmutated.
	ErrInvalidAmount = errors.New("invalid payment amount")

	// ErrAccountNotFound is returned by repositories when no ledger
	// exists for the requested student and term.
	ErrAccountNotFound = errors.New("ledger account not found")

	// ErrSaveFailed is returned when the repository cannot persist an
	// account. In-memory state stays mutated; the caller decides whether
	// to retry the save or discard the account.
	ErrSaveFailed = errors.New("failed to save ledger account")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports a rejected payment amount.
type InvalidAmountError struct {
	Amount Amount
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid payment amount: %s must be greater than zero", e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

// IsNotFound returns true if the error indicates a missing account.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

// assertConsistent panics if balance and overpayment are simultaneously
// non-zero after a mutation. That state can only be produced by a bug in
// the allocation algorithm and must never be silently coerced.
func assertConsistent(balance, overpayment Amount) {
	if balance.IsPositive() && overpayment.IsPositive() {
		panic(fmt.Sprintf("inconsistent ledger state: balance %s and overpayment %s both non-zero",
			balance, overpayment))
	}
}
