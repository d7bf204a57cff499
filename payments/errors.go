/*
errors.go - Centralized error types for the payment allocator

ERROR CATEGORIES:
  1. Input-constraint violations - rejected at the call boundary
  2. Creation-constraint violations - the one place input is rejected
     rather than clamped, because there is no prior state to clamp against
  3. Conflict - optimistic-concurrency check failed, safe to retry
*/
package payments

import (
	"errors"
	"fmt"

	"github.com/warp/bookkeeper/money"
)

var (
	// ErrNonPositiveAmount is returned when a payment amount is zero or
	// negative.
	ErrNonPositiveAmount = errors.New("payment amount must be positive")

	// ErrAccountRequired is returned when a payment action carries no
	// account id.
	ErrAccountRequired = errors.New("payment account id required")

	// ErrNonPositiveTotal is returned at creation when the total owed is
	// zero or negative.
	ErrNonPositiveTotal = errors.New("total amount must be positive")

	// ErrInvalidPaidAmount is returned at creation when the upfront paid
	// amount contradicts the declared status.
	ErrInvalidPaidAmount = errors.New("paid amount inconsistent with payment status")

	// ErrInvoiceNotFound is returned when a referenced invoice does not exist.
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrExpenseNotFound is returned when a referenced expense does not exist.
	ErrExpenseNotFound = errors.New("expense not found")

	// ErrConflict is returned when a versioned update finds the record
	// changed underneath it. The caller should re-read and retry.
	ErrConflict = errors.New("concurrent modification detected")
)

// CreationError carries details of a rejected create.
type CreationError struct {
	Status Status
	Total  money.Money
	Paid   money.Money
	Reason error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("cannot create %s record (total %s, paid %s): %v",
		e.Status, e.Total, e.Paid, e.Reason)
}

func (e *CreationError) Unwrap() error { return e.Reason }

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNonPositiveAmount) ||
		errors.Is(err, ErrAccountRequired) ||
		errors.Is(err, ErrNonPositiveTotal) ||
		errors.Is(err, ErrInvalidPaidAmount)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvoiceNotFound) || errors.Is(err, ErrExpenseNotFound)
}

// IsRetryable reports whether the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}
