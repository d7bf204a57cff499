/*
Package books composes the three engines into the back-office workflows.

PURPOSE:
  The ledger, payment, and inventory engines are each pure over their own
  records. This package is where they meet:
  - paying or collecting on an invoice/expense (allocator transition +
    version-checked save + audit entry)
  - committing a purchase to the warehouse (one inbound movement per line,
    all-or-nothing)
  - committing a sale (reads the weighted-average cost, emits outbound
    movements, prices cost of goods sold)
  - the balance report (transfer fold, then invoice/expense overlay)

CONCURRENCY:
  Invoice and expense payments are read-modify-write. The stores apply
  updates with a compare-and-swap on a version token; on a conflict the
  service re-reads and retries a few times before surfacing the conflict
  to the caller.
*/
package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/payments"
)

// paymentAttempts bounds the compare-and-swap retry loop.
const paymentAttempts = 3

// Service wires the engines and stores together.
type Service struct {
	Vaults   *ledger.Service
	Invoices payments.InvoiceStore
	Expenses payments.ExpenseStore
	Stock    *inventory.Engine
	StockTx  inventory.TxMovementStore
	Audit    AuditLog

	log zerolog.Logger
}

func NewService(
	vaults *ledger.Service,
	invoices payments.InvoiceStore,
	expenses payments.ExpenseStore,
	stock inventory.TxMovementStore,
	audit AuditLog,
	log zerolog.Logger,
) *Service {
	return &Service{
		Vaults:   vaults,
		Invoices: invoices,
		Expenses: expenses,
		Stock:    inventory.NewEngine(stock),
		StockTx:  stock,
		Audit:    audit,
		log:      log.With().Str("component", "books").Logger(),
	}
}

// =============================================================================
// DOCUMENT CREATION
// =============================================================================

// CreateInvoice validates and stores a new invoice, auditing any upfront
// payment.
func (s *Service) CreateInvoice(ctx context.Context, direction payments.Direction, reference, party string, total money.Money, status payments.Status, paid money.Money, account ledger.AccountID, actor string) (*payments.Invoice, error) {
	inv, err := payments.NewInvoice(direction, reference, party, total, status, paid, account)
	if err != nil {
		return nil, err
	}
	if err := s.Invoices.InsertInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	s.audit(ctx, AuditEntry{
		ActorID:   actor,
		Action:    AuditInvoiceCreated,
		Reference: inv.Reference,
		AccountID: inv.AccountID,
		Amount:    inv.Paid,
		Details:   map[string]string{"direction": string(direction), "total": total.String()},
	})
	return inv, nil
}

// CreateExpense validates and stores a new expense, auditing any upfront
// payment.
func (s *Service) CreateExpense(ctx context.Context, description, expenseType string, total money.Money, status payments.Status, paid money.Money, account ledger.AccountID, actor string) (*payments.Expense, error) {
	exp, err := payments.NewExpense(description, expenseType, total, status, paid, account)
	if err != nil {
		return nil, err
	}
	if err := s.Expenses.InsertExpense(ctx, *exp); err != nil {
		return nil, err
	}
	s.audit(ctx, AuditEntry{
		ActorID:   actor,
		Action:    AuditExpenseCreated,
		Reference: exp.Description,
		AccountID: exp.AccountID,
		Amount:    exp.Paid,
		Details:   map[string]string{"total": total.String()},
	})
	return exp, nil
}

// =============================================================================
// PAYMENT ACTIONS
// =============================================================================

// PayInvoice applies one payment action against an invoice. The effective
// amount may be clamped to the remaining balance; zero means the invoice
// was already settled and nothing changed.
func (s *Service) PayInvoice(ctx context.Context, id payments.InvoiceID, amount money.Money, account ledger.AccountID, actor string) (*payments.Invoice, money.Money, error) {
	var conflict error
	for attempt := 0; attempt < paymentAttempts; attempt++ {
		inv, err := s.Invoices.GetInvoice(ctx, id)
		if err != nil {
			return nil, money.Zero, err
		}
		if inv == nil {
			return nil, money.Zero, payments.ErrInvoiceNotFound
		}

		effective, err := payments.ApplyInvoicePayment(inv, amount, account)
		if err != nil {
			return nil, money.Zero, err
		}
		if !effective.IsPositive() {
			return inv, money.Zero, nil
		}

		err = s.Invoices.UpdateInvoice(ctx, *inv)
		if errors.Is(err, payments.ErrConflict) {
			conflict = err
			s.log.Warn().Str("invoice", string(id)).Int("attempt", attempt+1).
				Msg("invoice payment hit a concurrent update, retrying")
			continue
		}
		if err != nil {
			return nil, money.Zero, err
		}

		s.audit(ctx, AuditEntry{
			ActorID:   actor,
			Action:    AuditInvoicePayment,
			Reference: inv.Reference,
			AccountID: account,
			Amount:    effective,
			Details:   map[string]string{"invoice_id": string(id), "requested": amount.String()},
		})
		return inv, effective, nil
	}
	return nil, money.Zero, conflict
}

// PayExpense applies one payment action against an expense, appending a
// payment entry.
func (s *Service) PayExpense(ctx context.Context, id payments.ExpenseID, amount money.Money, account ledger.AccountID, actor string) (*payments.Expense, money.Money, error) {
	var conflict error
	for attempt := 0; attempt < paymentAttempts; attempt++ {
		exp, err := s.Expenses.GetExpense(ctx, id)
		if err != nil {
			return nil, money.Zero, err
		}
		if exp == nil {
			return nil, money.Zero, payments.ErrExpenseNotFound
		}

		effective, err := payments.ApplyExpensePayment(exp, amount, account)
		if err != nil {
			return nil, money.Zero, err
		}
		if !effective.IsPositive() {
			return exp, money.Zero, nil
		}

		err = s.Expenses.UpdateExpense(ctx, *exp)
		if errors.Is(err, payments.ErrConflict) {
			conflict = err
			s.log.Warn().Str("expense", string(id)).Int("attempt", attempt+1).
				Msg("expense payment hit a concurrent update, retrying")
			continue
		}
		if err != nil {
			return nil, money.Zero, err
		}

		s.audit(ctx, AuditEntry{
			ActorID:   actor,
			Action:    AuditExpensePayment,
			Reference: exp.Description,
			AccountID: account,
			Amount:    effective,
			Details:   map[string]string{"expense_id": string(id), "requested": amount.String()},
		})
		return exp, effective, nil
	}
	return nil, money.Zero, conflict
}

// =============================================================================
// WAREHOUSE COMMITS
// =============================================================================

// PurchaseLine is one received line item of a purchase invoice.
type PurchaseLine struct {
	ProductID inventory.ProductID
	Quantity  decimal.Decimal
	Unit      string
	UnitCost  money.Money
	TotalCost money.Money
}

// SaleLine is one shipped line item of a sales invoice.
type SaleLine struct {
	ProductID inventory.ProductID
	Quantity  decimal.Decimal
	Unit      string
}

// CommitPurchase writes one inbound movement per line, all-or-nothing.
// Every line is validated before any write so a bad line cannot leave a
// half-committed warehouse.
func (s *Service) CommitPurchase(ctx context.Context, invoiceRef string, lines []PurchaseLine, actor string) error {
	movements := make([]inventory.Movement, 0, len(lines))
	now := time.Now().UTC()
	for _, line := range lines {
		if line.ProductID == "" {
			return inventory.ErrProductRequired
		}
		if !line.Quantity.IsPositive() {
			return inventory.ErrNonPositiveQuantity
		}
		movements = append(movements, inventory.Movement{
			ID:         inventory.MovementID(uuid.NewString()),
			ProductID:  line.ProductID,
			Type:       inventory.MovementPurchase,
			Quantity:   line.Quantity,
			Unit:       line.Unit,
			UnitCost:   line.UnitCost,
			TotalCost:  line.TotalCost,
			InvoiceRef: invoiceRef,
			CreatedBy:  actor,
			CreatedAt:  now,
		})
	}

	err := s.StockTx.WithTx(ctx, func(store inventory.MovementStore) error {
		for _, m := range movements {
			if err := store.AppendMovement(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("commit purchase %s: %w", invoiceRef, err)
	}

	s.audit(ctx, AuditEntry{
		ActorID:   actor,
		Action:    AuditPurchaseCommitted,
		Reference: invoiceRef,
		Details:   map[string]string{"lines": fmt.Sprintf("%d", len(lines))},
	})
	return nil
}

// CommitSale prices each line at the product's effective unit cost, writes
// one outbound movement per line all-or-nothing, and returns the total
// cost of goods sold. Available stock is not checked here; a negative
// on-hand quantity afterward is the oversold signal callers read back.
func (s *Service) CommitSale(ctx context.Context, invoiceRef string, lines []SaleLine, actor string) (money.Money, error) {
	cogs := money.Zero
	movements := make([]inventory.Movement, 0, len(lines))
	now := time.Now().UTC()
	for _, line := range lines {
		if line.ProductID == "" {
			return money.Zero, inventory.ErrProductRequired
		}
		if !line.Quantity.IsPositive() {
			return money.Zero, inventory.ErrNonPositiveQuantity
		}
		unitCost, err := s.Stock.EffectiveUnitCost(ctx, line.ProductID)
		if err != nil {
			return money.Zero, err
		}
		cogs = cogs.Add(unitCost.Cost.Mul(line.Quantity))
		movements = append(movements, inventory.Movement{
			ID:         inventory.MovementID(uuid.NewString()),
			ProductID:  line.ProductID,
			Type:       inventory.MovementSale,
			Quantity:   line.Quantity,
			Unit:       line.Unit,
			InvoiceRef: invoiceRef,
			CreatedBy:  actor,
			CreatedAt:  now,
		})
	}

	err := s.StockTx.WithTx(ctx, func(store inventory.MovementStore) error {
		for _, m := range movements {
			if err := store.AppendMovement(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return money.Zero, fmt.Errorf("commit sale %s: %w", invoiceRef, err)
	}

	s.audit(ctx, AuditEntry{
		ActorID:   actor,
		Action:    AuditSaleCommitted,
		Reference: invoiceRef,
		Amount:    cogs,
		Details:   map[string]string{"lines": fmt.Sprintf("%d", len(lines))},
	})
	return cogs, nil
}

// =============================================================================
// TRANSFERS AND BALANCES
// =============================================================================

// RecordTransfer validates and appends a transfer, auditing it.
func (s *Service) RecordTransfer(ctx context.Context, from, to ledger.AccountID, amount money.Money, note, actor string) (*ledger.Transfer, error) {
	t, err := s.Vaults.RecordTransfer(ctx, from, to, amount, note, actor)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, AuditEntry{
		ActorID:   actor,
		Action:    AuditTransferRecorded,
		Reference: t.Note,
		AccountID: t.FromAccountID,
		Amount:    t.Amount,
		Details:   map[string]string{"to_account": string(t.ToAccountID)},
	})
	return t, nil
}

// Balances produces the full per-vault balance map: opening balances plus
// transfers, then every invoice and expense payment overlaid as a
// single-sided effect on its tagged account. Unknown account references
// are skipped, never an error.
func (s *Service) Balances(ctx context.Context) (map[ledger.AccountID]money.Money, error) {
	balances, err := s.Vaults.Balances(ctx)
	if err != nil {
		return nil, err
	}

	invoices, err := s.Invoices.ListInvoices(ctx, "")
	if err != nil {
		return nil, err
	}
	var effects []ledger.Effect
	for _, inv := range invoices {
		if inv.Paid.IsPositive() {
			effects = append(effects, inv.Effect())
		}
	}

	expenses, err := s.Expenses.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	for _, exp := range expenses {
		effects = append(effects, exp.Effects()...)
	}

	return ledger.ApplyEffects(balances, effects), nil
}

func (s *Service) audit(ctx context.Context, entry AuditEntry) {
	if s.Audit == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.At = time.Now().UTC()
	if err := s.Audit.AppendAudit(ctx, entry); err != nil {
		// The action itself succeeded; a lost audit entry is logged, not
		// propagated.
		s.log.Error().Err(err).Str("action", string(entry.Action)).Msg("failed to append audit entry")
	}
}
