/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All ledger error values in one place. Callers match with errors.Is();
  composing layers wrap these with additional context.

ERROR CATEGORIES:
  1. Input-constraint violations - rejected before any state is touched
  2. Not-found errors - a referenced record does not exist
  3. Store errors - persistence-level failures (wrapped, not defined here)
*/
package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNonPositiveAmount is returned when a transfer amount is zero or
	// negative. Amounts are always stored positive; direction is structural.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrSameAccount is returned when a transfer names the same account on
	// both sides.
	ErrSameAccount = errors.New("source and destination accounts are identical")

	// ErrAccountRequired is returned when an account id is missing where one
	// is mandatory.
	ErrAccountRequired = errors.New("account id required")

	// ErrAccountNotFound is returned when a directly addressed account does
	// not exist. Note: dangling references inside the event history are
	// tolerated during balance computation, never surfaced as this error.
	ErrAccountNotFound = errors.New("account not found")
)

// TransferValidationError carries the rejected transfer's details.
type TransferValidationError struct {
	From   AccountID
	To     AccountID
	Reason error
}

func (e *TransferValidationError) Error() string {
	return fmt.Sprintf("invalid transfer %s -> %s: %v", e.From, e.To, e.Reason)
}

func (e *TransferValidationError) Unwrap() error { return e.Reason }

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrAccountRequired)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}
