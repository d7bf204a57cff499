/*
valuation.go - Quantity and cost derivations

PURPOSE:
  Derives available quantity and weighted-average unit cost by folding the
  movement log. The pure fold functions work on a movement slice; the
  Engine wraps them with store access.

AVERAGING:
  The average is a LIFETIME weighted average over all inbound movements,
  not a moving average limited to stock on hand. A product bought
  expensive long ago and sold from a partially-depleted lot keeps the same
  historical average until new purchases shift it.

CLAMPING POLICY:
  AvailableQuantity can go negative and is surfaced as-is so callers can
  decide whether to block a sale, warn, or allow backorder. Warehouse
  valuation floors quantities at zero instead, because a negative on-hand
  count cannot contribute negative value to a total.
*/
package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/bookkeeper/money"
)

// =============================================================================
// PURE FOLDS
// =============================================================================

// AvailableQuantityOf sums inbound quantities minus outbound quantities.
// The result may be negative: an oversold product.
func AvailableQuantityOf(movements []Movement) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		total = total.Add(m.SignedQuantity())
	}
	return total
}

// AverageUnitCostOf computes total inbound cost over total inbound
// quantity across the product's lifetime, or zero if no inbound quantity
// was ever recorded. Sales never shift the average.
func AverageUnitCostOf(movements []Movement) money.Money {
	totalCost := money.Zero
	totalQty := decimal.Zero
	for _, m := range movements {
		if !m.Type.Inbound() {
			continue
		}
		totalCost = totalCost.Add(m.CostContribution())
		totalQty = totalQty.Add(m.Quantity)
	}
	if !totalQty.IsPositive() {
		return money.Zero
	}
	return totalCost.Div(totalQty)
}

// LastKnownUnitCostOf returns the most recent inbound movement's cost per
// unit, skipping movements with no usable cost. Best-effort fallback for
// products whose average is zero (only sales so far, or zero-cost
// purchases). Zero if none found.
func LastKnownUnitCostOf(movements []Movement) money.Money {
	for i := len(movements) - 1; i >= 0; i-- {
		if cost := movements[i].CostPerUnit(); cost.IsPositive() {
			return cost
		}
	}
	return money.Zero
}

// UnitOf returns the unit of measure of the most recent movement, or "".
func UnitOf(movements []Movement) string {
	for i := len(movements) - 1; i >= 0; i-- {
		if movements[i].Unit != "" {
			return movements[i].Unit
		}
	}
	return ""
}

// =============================================================================
// ENGINE - Store-backed derivations
// =============================================================================

// Engine answers quantity and cost questions from the persisted log.
type Engine struct {
	Movements MovementStore
}

func NewEngine(store MovementStore) *Engine {
	return &Engine{Movements: store}
}

// RecordMovement validates and appends one movement, returning its id.
// It does not check available stock; that is the caller's choice via
// AvailableQuantity.
func (e *Engine) RecordMovement(ctx context.Context, m Movement) (MovementID, error) {
	if m.ProductID == "" {
		return "", ErrProductRequired
	}
	if !m.Type.Valid() {
		return "", ErrUnknownMovementType
	}
	if !m.Quantity.IsPositive() {
		return "", ErrNonPositiveQuantity
	}

	if m.ID == "" {
		m.ID = MovementID(uuid.NewString())
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if err := e.Movements.AppendMovement(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

// AvailableQuantity derives the product's signed on-hand quantity.
func (e *Engine) AvailableQuantity(ctx context.Context, id ProductID) (decimal.Decimal, error) {
	movements, err := e.Movements.MovementsByProduct(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return AvailableQuantityOf(movements), nil
}

// AverageUnitCost derives the product's lifetime weighted-average cost
// with its unit of measure.
func (e *Engine) AverageUnitCost(ctx context.Context, id ProductID) (ProductCost, error) {
	movements, err := e.Movements.MovementsByProduct(ctx, id)
	if err != nil {
		return ProductCost{}, err
	}
	return ProductCost{Cost: AverageUnitCostOf(movements), Unit: UnitOf(movements)}, nil
}

// EffectiveUnitCost is the average cost, falling back to the last known
// per-movement cost when the average is zero. This is the figure sales
// workflows use to price cost of goods sold.
func (e *Engine) EffectiveUnitCost(ctx context.Context, id ProductID) (ProductCost, error) {
	movements, err := e.Movements.MovementsByProduct(ctx, id)
	if err != nil {
		return ProductCost{}, err
	}
	cost := AverageUnitCostOf(movements)
	if !cost.IsPositive() {
		cost = LastKnownUnitCostOf(movements)
	}
	return ProductCost{Cost: cost, Unit: UnitOf(movements)}, nil
}

// Valuation totals max(0, available quantity) x effective unit cost over
// every product in the log.
func (e *Engine) Valuation(ctx context.Context) (money.Money, error) {
	movements, err := e.Movements.AllMovements(ctx)
	if err != nil {
		return money.Zero, err
	}

	byProduct := make(map[ProductID][]Movement)
	var order []ProductID
	for _, m := range movements {
		if _, seen := byProduct[m.ProductID]; !seen {
			order = append(order, m.ProductID)
		}
		byProduct[m.ProductID] = append(byProduct[m.ProductID], m)
	}

	total := money.Zero
	for _, id := range order {
		productMovements := byProduct[id]
		qty := AvailableQuantityOf(productMovements)
		if !qty.IsPositive() {
			continue
		}
		cost := AverageUnitCostOf(productMovements)
		if !cost.IsPositive() {
			cost = LastKnownUnitCostOf(productMovements)
		}
		total = total.Add(cost.Mul(qty))
	}
	return total, nil
}
