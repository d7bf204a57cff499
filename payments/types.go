/*
Package payments provides the payment allocator.

PURPOSE:
  Governs how one discrete payment action updates the paid-amount state of
  a single invoice or expense:
  - paid amount never exceeds the total owed (overpayment is clamped)
  - paid amount is monotonically non-decreasing
  - the derived payment status always matches the paid amount

KEY CONCEPTS IN THIS FILE (types.go):
  - Invoice: purchase or sale document; the two share one shape with a
    Direction tag that decides how the payment folds into vault balances
  - Expense: standalone cost with an ordered list of payment entries,
    supporting split payment across accounts over time
  - PaymentEntry: one discrete (account, amount) contribution

DESIGN PRINCIPLES:
  1. Clamping over rejection: an overpayment request is reduced to the
     remaining balance, never an error (creation is the one exception)
  2. Append-only entries: expense payment entries are never mutated or
     removed, only appended
  3. Derived status: paid/partial/not_paid is computed, never set directly

SEE ALSO:
  - allocator.go: the state transitions
  - store.go: persistence with optimistic concurrency
*/
package payments

import (
	"time"

	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
)

// =============================================================================
// IDENTIFIERS AND TAGS
// =============================================================================

type InvoiceID string
type ExpenseID string

// Direction tells which way money flows when an invoice is paid.
type Direction string

const (
	DirectionPurchase Direction = "purchase" // money leaves a vault, to a supplier
	DirectionSale     Direction = "sale"     // money enters a vault, from a customer
)

// Status is the derived payment state of an invoice or expense.
type Status string

const (
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusNotPaid Status = "not_paid"
)

// DeriveStatus computes the status from paid vs total:
// paid iff paid >= total, partial iff 0 < paid < total, else not_paid.
func DeriveStatus(total, paid money.Money) Status {
	switch {
	case paid.IsPositive() && paid.GreaterOrEqual(total):
		return StatusPaid
	case paid.IsPositive():
		return StatusPartial
	default:
		return StatusNotPaid
	}
}

// =============================================================================
// INVOICE
// =============================================================================

// Invoice is a purchase or sales document. Paid accumulates monotonically;
// AccountID tags the single vault the most recent payment flowed through.
// Invoices keep no payment-entry history, only expenses do.
//
// Version is an optimistic-concurrency token: stores only apply an update
// when the stored version matches, so two concurrent payments against the
// same invoice cannot silently lose one contribution.
type Invoice struct {
	ID        InvoiceID
	Direction Direction
	Reference string // human-readable invoice number
	PartyName string // supplier or customer display name
	Total     money.Money
	Paid      money.Money
	AccountID ledger.AccountID
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Remaining is the amount still owed. Never negative for a well-formed
// invoice (Paid <= Total is an invariant of the allocator).
func (i Invoice) Remaining() money.Money {
	return i.Total.Sub(i.Paid).Max(money.Zero)
}

// Status derives the payment status.
func (i Invoice) Status() Status {
	return DeriveStatus(i.Total, i.Paid)
}

// Effect converts the invoice's accumulated payments into a single-sided
// ledger effect on its tagged account. Purchases drain the vault, sales
// fill it.
func (i Invoice) Effect() ledger.Effect {
	dir := ledger.EffectOutflow
	if i.Direction == DirectionSale {
		dir = ledger.EffectInflow
	}
	return ledger.Effect{AccountID: i.AccountID, Amount: i.Paid, Direction: dir}
}

// =============================================================================
// EXPENSE
// =============================================================================

// PaymentEntry is one discrete payment action against an expense.
type PaymentEntry struct {
	AccountID ledger.AccountID
	Amount    money.Money
	PaidAt    time.Time
}

// Expense is a standalone cost payable from one or more vaults over time.
//
// INVARIANTS:
//   - Paid == sum of Entries amounts
//   - Paid <= Total
//   - PaymentStatus == DeriveStatus(Total, Paid)
//
// AccountID mirrors the most recent entry's account for display parity
// with invoices. Records written before entries existed carry only the
// (AccountID, Paid) pair; Normalize converts that legacy shape into a
// one-entry list at the storage-read boundary so the allocator only ever
// sees the list form.
type Expense struct {
	ID            ExpenseID
	Description   string
	ExpenseType   string
	Total         money.Money
	Paid          money.Money
	PaymentStatus Status
	Entries       []PaymentEntry
	AccountID     ledger.AccountID
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Normalize converts a legacy single-pair expense into the entry-list form.
// Call immediately after loading from storage; a record that already has
// entries is returned untouched.
func (e *Expense) Normalize() {
	if len(e.Entries) > 0 {
		return
	}
	if e.Paid.IsPositive() && e.AccountID != "" {
		e.Entries = []PaymentEntry{{
			AccountID: e.AccountID,
			Amount:    e.Paid,
			PaidAt:    e.CreatedAt,
		}}
	}
}

// EntriesTotal sums all payment entries.
func (e Expense) EntriesTotal() money.Money {
	total := money.Zero
	for _, entry := range e.Entries {
		total = total.Add(entry.Amount)
	}
	return total
}

// Remaining is the amount still owed on the expense.
func (e Expense) Remaining() money.Money {
	return e.Total.Sub(e.Paid).Max(money.Zero)
}

// Effect converts the expense's accumulated payments into ledger effects,
// one per payment entry so each vault carries its own share.
func (e Expense) Effects() []ledger.Effect {
	effects := make([]ledger.Effect, 0, len(e.Entries))
	for _, entry := range e.Entries {
		effects = append(effects, ledger.Effect{
			AccountID: entry.AccountID,
			Amount:    entry.Amount,
			Direction: ledger.EffectOutflow,
		})
	}
	return effects
}

// =============================================================================
// READ-SIDE GROUPING
// =============================================================================

// AccountShare is the summed contribution of one account toward an expense.
type AccountShare struct {
	AccountID ledger.AccountID
	Amount    money.Money
}

// GroupEntriesByAccount aggregates entries per account for reporting,
// ordered by each account's first appearance. Pure view: stored entries
// are never altered.
func GroupEntriesByAccount(entries []PaymentEntry) []AccountShare {
	index := make(map[ledger.AccountID]int)
	var shares []AccountShare
	for _, entry := range entries {
		if i, ok := index[entry.AccountID]; ok {
			shares[i].Amount = shares[i].Amount.Add(entry.Amount)
			continue
		}
		index[entry.AccountID] = len(shares)
		shares = append(shares, AccountShare{AccountID: entry.AccountID, Amount: entry.Amount})
	}
	return shares
}
