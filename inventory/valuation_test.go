package inventory_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/store/memory"
)

func purchase(product string, qty int64, unitCost float64) inventory.Movement {
	return inventory.Movement{
		ProductID: inventory.ProductID(product),
		Type:      inventory.MovementPurchase,
		Quantity:  decimal.NewFromInt(qty),
		Unit:      "pcs",
		UnitCost:  money.FromFloat(unitCost),
	}
}

func sale(product string, qty int64) inventory.Movement {
	return inventory.Movement{
		ProductID: inventory.ProductID(product),
		Type:      inventory.MovementSale,
		Quantity:  decimal.NewFromInt(qty),
		Unit:      "pcs",
	}
}

func newEngine(t *testing.T, movements ...inventory.Movement) *inventory.Engine {
	t.Helper()
	engine := inventory.NewEngine(memory.New())
	for _, m := range movements {
		_, err := engine.RecordMovement(context.Background(), m)
		require.NoError(t, err)
	}
	return engine
}

// =============================================================================
// QUANTITY
// =============================================================================

func TestAvailableQuantity_PurchaseThenSale(t *testing.T) {
	// GIVEN: 10 units in at 5 each, 4 units sold
	engine := newEngine(t, purchase("oak", 10, 5), sale("oak", 4))

	// WHEN: The available quantity is derived
	qty, err := engine.AvailableQuantity(context.Background(), "oak")
	require.NoError(t, err)

	// THEN: 6 remain and the average cost is untouched by the sale
	assert.True(t, qty.Equal(decimal.NewFromInt(6)))

	cost, err := engine.AverageUnitCost(context.Background(), "oak")
	require.NoError(t, err)
	assert.True(t, cost.Cost.Equal(money.FromInt(5)))
}

func TestAvailableQuantity_CanGoNegative(t *testing.T) {
	// GIVEN: A product oversold past its stock
	engine := newEngine(t, purchase("oak", 3, 5), sale("oak", 8))

	// WHEN: The available quantity is derived
	qty, err := engine.AvailableQuantity(context.Background(), "oak")
	require.NoError(t, err)

	// THEN: The signed quantity is -5, never clamped
	assert.True(t, qty.Equal(decimal.NewFromInt(-5)))
}

// =============================================================================
// WEIGHTED-AVERAGE COST
// =============================================================================

func TestAverageUnitCost_WeightsLotsByQuantity(t *testing.T) {
	// GIVEN: 10 units at 5 and 10 units at 7
	engine := newEngine(t, purchase("oak", 10, 5), purchase("oak", 10, 7))

	// WHEN: The average unit cost is derived
	cost, err := engine.AverageUnitCost(context.Background(), "oak")
	require.NoError(t, err)

	// THEN: (50 + 70) / 20 = 6
	assert.True(t, cost.Cost.Equal(money.FromInt(6)))
	assert.Equal(t, "pcs", cost.Unit)
}

func TestAverageUnitCost_IsLifetimeNotOnHand(t *testing.T) {
	// GIVEN: A cheap lot fully sold before an expensive lot arrives
	engine := newEngine(t,
		purchase("oak", 10, 5),
		sale("oak", 10),
		purchase("oak", 10, 7),
	)

	// WHEN: The average unit cost is derived
	cost, err := engine.AverageUnitCost(context.Background(), "oak")
	require.NoError(t, err)

	// THEN: Both lots still weigh in: (50 + 70) / 20 = 6, not 7
	assert.True(t, cost.Cost.Equal(money.FromInt(6)))
}

func TestAverageUnitCost_TotalCostWinsOverUnitCost(t *testing.T) {
	// GIVEN: A lot carrying an explicit total cost that disagrees with
	// quantity x unit cost (e.g. freight rolled in)
	m := purchase("oak", 10, 5)
	m.TotalCost = money.FromInt(60)
	engine := newEngine(t, m)

	cost, err := engine.AverageUnitCost(context.Background(), "oak")
	require.NoError(t, err)
	assert.True(t, cost.Cost.Equal(money.FromInt(6)))
}

func TestEffectiveUnitCost_FallsBackToLastKnown(t *testing.T) {
	// GIVEN: A product whose only inbound movement carries no cost
	engine := newEngine(t,
		inventory.Movement{
			ProductID: "pine",
			Type:      inventory.MovementAdjustment,
			Quantity:  decimal.NewFromInt(5),
		},
		sale("pine", 5),
	)

	// WHEN: No inbound ever carried a cost
	cost, err := engine.EffectiveUnitCost(context.Background(), "pine")
	require.NoError(t, err)

	// THEN: Both the average and the fallback are zero
	assert.True(t, cost.Cost.IsZero())

	// AND WHEN: A costed purchase appears
	_, err = engine.RecordMovement(context.Background(), purchase("pine", 4, 3))
	require.NoError(t, err)

	// THEN: The effective cost reflects it
	cost, err = engine.EffectiveUnitCost(context.Background(), "pine")
	require.NoError(t, err)
	assert.True(t, cost.Cost.IsPositive())
}

func TestLastKnownUnitCost_ScansBackwards(t *testing.T) {
	movements := []inventory.Movement{
		purchase("oak", 10, 5),
		purchase("oak", 10, 7),
		sale("oak", 3),
	}
	// The most recent movement with a usable cost is the 7 lot
	assert.True(t, inventory.LastKnownUnitCostOf(movements).Equal(money.FromInt(7)))
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestRecordMovement_RejectsBadInput(t *testing.T) {
	engine := inventory.NewEngine(memory.New())
	ctx := context.Background()

	_, err := engine.RecordMovement(ctx, inventory.Movement{
		Type: inventory.MovementPurchase, Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, inventory.ErrProductRequired)

	_, err = engine.RecordMovement(ctx, inventory.Movement{
		ProductID: "oak", Type: "teleport", Quantity: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, inventory.ErrUnknownMovementType)

	_, err = engine.RecordMovement(ctx, inventory.Movement{
		ProductID: "oak", Type: inventory.MovementSale, Quantity: decimal.Zero,
	})
	assert.ErrorIs(t, err, inventory.ErrNonPositiveQuantity)
	assert.True(t, inventory.IsClientError(err))
}

// =============================================================================
// VALUATION
// =============================================================================

func TestValuation_SumsPositiveStockAtAverageCost(t *testing.T) {
	// GIVEN: Two products with stock on hand
	engine := newEngine(t,
		purchase("oak", 10, 5),
		sale("oak", 4), // 6 left at avg 5 = 30
		purchase("pine", 10, 5),
		purchase("pine", 10, 7), // 20 left at avg 6 = 120
	)

	// WHEN: The warehouse is valued
	total, err := engine.Valuation(context.Background())
	require.NoError(t, err)

	// THEN: 30 + 120
	assert.True(t, total.Equal(money.FromInt(150)))
}

func TestValuation_FloorsOversoldProductsAtZero(t *testing.T) {
	// GIVEN: One healthy product and one oversold product
	engine := newEngine(t,
		purchase("oak", 10, 5),
		purchase("pine", 2, 100),
		sale("pine", 6), // -4 on hand
	)

	// WHEN: The warehouse is valued
	total, err := engine.Valuation(context.Background())
	require.NoError(t, err)

	// THEN: The oversold product contributes zero, never a negative value
	assert.True(t, total.Equal(money.FromInt(50)))
}
