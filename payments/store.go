/*
store.go - Persistence interfaces for invoices and expenses

PURPOSE:
  Invoices and expenses are read-modify-write records. To keep concurrent
  payment actions from losing updates, every mutation goes through a
  version-checked update: the store applies the write only when the stored
  version matches the one the caller read, bumps it by one, and returns
  ErrConflict otherwise.

LEGACY NORMALIZATION:
  Implementations must return expenses in normalized entry-list form
  (Expense.Normalize) so the allocator never branches on the legacy shape.
*/
package payments

import "context"

// InvoiceStore persists invoices.
type InvoiceStore interface {
	// InsertInvoice stores a new invoice at version 1.
	InsertInvoice(ctx context.Context, inv Invoice) error

	// UpdateInvoice applies a mutation if the stored version equals
	// inv.Version, then increments it. Returns ErrConflict on mismatch.
	UpdateInvoice(ctx context.Context, inv Invoice) error

	// GetInvoice returns the invoice or nil if it does not exist.
	GetInvoice(ctx context.Context, id InvoiceID) (*Invoice, error)

	// ListInvoices returns invoices, optionally filtered by direction
	// (empty direction means all), newest first.
	ListInvoices(ctx context.Context, direction Direction) ([]Invoice, error)
}

// ExpenseStore persists expenses.
type ExpenseStore interface {
	// InsertExpense stores a new expense at version 1.
	InsertExpense(ctx context.Context, exp Expense) error

	// UpdateExpense applies a mutation if the stored version equals
	// exp.Version, then increments it. Returns ErrConflict on mismatch.
	UpdateExpense(ctx context.Context, exp Expense) error

	// GetExpense returns the expense, normalized, or nil if missing.
	GetExpense(ctx context.Context, id ExpenseID) (*Expense, error)

	// ListExpenses returns all expenses, normalized, newest first.
	ListExpenses(ctx context.Context) ([]Expense, error)
}
