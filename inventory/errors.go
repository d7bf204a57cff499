// errors.go - Error values for the inventory engine.
//
// Deliberately small: recording a movement has no failure mode beyond the
// quantity and type constraints. An oversold product (negative available
// quantity) is a business signal surfaced through the derivations, not an
// error from this package.
package inventory

import "errors"

var (
	// ErrNonPositiveQuantity is returned when a movement's quantity is zero
	// or negative. Direction is carried by the type tag, never by sign.
	ErrNonPositiveQuantity = errors.New("movement quantity must be positive")

	// ErrUnknownMovementType is returned for a type outside
	// purchase/adjustment/sale.
	ErrUnknownMovementType = errors.New("unknown movement type")

	// ErrProductRequired is returned when a movement carries no product id.
	ErrProductRequired = errors.New("product id required")
)

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrNonPositiveQuantity) ||
		errors.Is(err, ErrUnknownMovementType) ||
		errors.Is(err, ErrProductRequired)
}
