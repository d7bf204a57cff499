/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:

	Populates an empty database with a realistic trading-day snapshot:
	vault accounts, a transfer, open and settled invoices, a partially
	paid expense, and warehouse stock with a sale already shipped.
	Exercises every engine so the balance report, the valuation, and
	the audit trail all show something right after startup.

USAGE:

	Enabled on startup with SEED_DEMO=true, or via POST /api/reset.

NOTE:

	Seeding writes through the composed service so the audit trail is
	populated the same way real traffic would populate it. Only use in
	development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase handler
*/
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/payments"
)

// SeedDemo loads the demo data set into an empty database.
func SeedDemo(ctx context.Context, svc *books.Service) error {
	const actor = "demo"

	// Vaults
	safe, err := svc.Vaults.CreateAccount(ctx, "Office Safe", ledger.KindPersonal, money.FromInt(5000))
	if err != nil {
		return fmt.Errorf("seed: create safe: %w", err)
	}
	bank, err := svc.Vaults.CreateAccount(ctx, "Business Bank", ledger.KindBank, money.FromInt(20000))
	if err != nil {
		return fmt.Errorf("seed: create bank: %w", err)
	}

	if _, err := svc.RecordTransfer(ctx, bank.ID, safe.ID, money.FromInt(1500), "float for the week", actor); err != nil {
		return fmt.Errorf("seed: transfer: %w", err)
	}

	// A supplier invoice, partially paid from the bank
	purchase, err := svc.CreateInvoice(ctx, payments.DirectionPurchase, "PINV-1001", "Nordic Supplies",
		money.FromInt(3600), payments.StatusPartial, money.FromInt(1200), bank.ID, actor)
	if err != nil {
		return fmt.Errorf("seed: purchase invoice: %w", err)
	}

	// A customer invoice, still unpaid
	if _, err := svc.CreateInvoice(ctx, payments.DirectionSale, "SINV-2001", "Baltic Retail",
		money.FromInt(5400), payments.StatusNotPaid, money.Zero, "", actor); err != nil {
		return fmt.Errorf("seed: sales invoice: %w", err)
	}

	// An expense paid across two vaults
	rent, err := svc.CreateExpense(ctx, "Warehouse rent, September", "rent",
		money.FromInt(900), payments.StatusPartial, money.FromInt(400), bank.ID, actor)
	if err != nil {
		return fmt.Errorf("seed: expense: %w", err)
	}
	if _, _, err := svc.PayExpense(ctx, rent.ID, money.FromInt(200), safe.ID, actor); err != nil {
		return fmt.Errorf("seed: expense payment: %w", err)
	}

	// Stock in from the supplier invoice, then a shipped sale
	err = svc.CommitPurchase(ctx, purchase.Reference, []books.PurchaseLine{
		{ProductID: "oak-board", Quantity: decimal.NewFromInt(120), Unit: "pcs", UnitCost: money.FromInt(25)},
		{ProductID: "pine-board", Quantity: decimal.NewFromInt(80), Unit: "pcs", UnitCost: money.FromFloat(7.5)},
	}, actor)
	if err != nil {
		return fmt.Errorf("seed: purchase commit: %w", err)
	}

	if _, err := svc.CommitSale(ctx, "SINV-2001", []books.SaleLine{
		{ProductID: "oak-board", Quantity: decimal.NewFromInt(40), Unit: "pcs"},
	}, actor); err != nil {
		return fmt.Errorf("seed: sale commit: %w", err)
	}

	return nil
}
