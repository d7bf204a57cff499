/*
store.go - Persistence interface for stock movements

APPEND-ONLY CONTRACT:
  Movements are never updated or deleted. The interface exposes exactly
  one write operation; reversing a sale or purchase means appending a new,
  type-appropriate movement.
*/
package inventory

import "context"

// MovementStore persists stock movements.
type MovementStore interface {
	// AppendMovement records one movement. The only write operation.
	AppendMovement(ctx context.Context, m Movement) error

	// MovementsByProduct returns the product's movements, oldest first.
	MovementsByProduct(ctx context.Context, id ProductID) ([]Movement, error)

	// MovementsByInvoice returns movements back-referencing an invoice.
	MovementsByInvoice(ctx context.Context, invoiceRef string) ([]Movement, error)

	// AllMovements returns the full movement log, oldest first. Used by
	// warehouse-wide valuation.
	AllMovements(ctx context.Context) ([]Movement, error)
}

// TxMovementStore wraps MovementStore with transaction support. Committing
// a multi-line purchase or sale to the warehouse writes one movement per
// line and must be all-or-nothing.
type TxMovementStore interface {
	MovementStore

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(MovementStore) error) error
}
