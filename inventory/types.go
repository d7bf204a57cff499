/*
Package inventory provides the inventory valuation engine.

PURPOSE:
  Maintains an append-only log of quantity-affecting stock events per
  product and derives from it:
  - current available quantity (signed: a negative value signals an
    oversold product and is surfaced, never clamped)
  - lifetime weighted-average acquisition cost per unit, consumed by
    sales workflows to price cost of goods sold

KEY CONCEPTS IN THIS FILE (types.go):
  - Movement: one immutable quantity change (inbound purchase/adjustment
    or outbound sale); quantity is always stored positive, the type tag
    alone implies direction
  - cost contribution rules for inbound movements

DESIGN PRINCIPLES:
  1. Append-only: stock levels and costs change only by appending new
     movements; a correction is a new, type-appropriate movement
  2. Lifetime averaging: cost basis does not decay as units are sold -
     the average moves only when new inbound movements arrive

SEE ALSO:
  - valuation.go: the derivations
  - store.go: persistence interface
*/
package inventory

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/bookkeeper/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ProductID string
type MovementID string

// =============================================================================
// MOVEMENT - Immutable quantity event
// =============================================================================

type MovementType string

const (
	MovementPurchase   MovementType = "purchase"   // inbound, carries cost
	MovementAdjustment MovementType = "adjustment" // inbound correction, may carry cost
	MovementSale       MovementType = "sale"       // outbound, never carries cost
)

// Inbound reports whether the movement adds stock.
func (t MovementType) Inbound() bool {
	return t == MovementPurchase || t == MovementAdjustment
}

// Valid reports whether the type is one of the three known tags.
func (t MovementType) Valid() bool {
	return t == MovementPurchase || t == MovementAdjustment || t == MovementSale
}

// Movement records one quantity change for one product. Quantity is always
// positive; callers must never encode direction in the sign. UnitCost and
// TotalCost are optional and only meaningful on inbound movements.
type Movement struct {
	ID         MovementID
	ProductID  ProductID
	Type       MovementType
	Quantity   decimal.Decimal
	Unit       string // unit of measure, e.g. "pcs", "kg"
	UnitCost   money.Money
	TotalCost  money.Money
	InvoiceRef string // optional back-reference to the causing invoice
	CreatedBy  string
	CreatedAt  time.Time
}

// SignedQuantity is the quantity with direction applied.
func (m Movement) SignedQuantity() decimal.Decimal {
	if m.Type.Inbound() {
		return m.Quantity
	}
	return m.Quantity.Neg()
}

// CostContribution is the movement's share of the product's cost basis:
// the recorded total cost if present and positive, otherwise quantity
// times unit cost if both are positive, otherwise zero. Sales never
// contribute.
func (m Movement) CostContribution() money.Money {
	if !m.Type.Inbound() {
		return money.Zero
	}
	if m.TotalCost.IsPositive() {
		return m.TotalCost
	}
	if m.Quantity.IsPositive() && m.UnitCost.IsPositive() {
		return m.UnitCost.Mul(m.Quantity)
	}
	return money.Zero
}

// CostPerUnit is the movement's cost contribution divided by its quantity,
// or zero when either is missing.
func (m Movement) CostPerUnit() money.Money {
	contribution := m.CostContribution()
	if !contribution.IsPositive() || !m.Quantity.IsPositive() {
		return money.Zero
	}
	return contribution.Div(m.Quantity)
}

// ProductCost pairs a per-unit cost with its unit of measure.
type ProductCost struct {
	Cost money.Money
	Unit string
}
