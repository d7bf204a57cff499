/*
allocator.go - Payment state transitions

PURPOSE:
  Applies one discrete payment action to one invoice or expense. These are
  pure transitions on in-memory records; loading, version-checked saving,
  and audit emission are the composing layer's job.

CLAMPING:
  The effective amount actually applied is min(requested, remaining).
  Overpayment requests are silently reduced, never rejected. Paying an
  already-settled record is a no-op, not an error.

CREATION:
  NewInvoice and NewExpense are the one place input is rejected rather
  than clamped: an upfront paid amount must agree with the declared
  status, because there is no prior state to clamp against.
*/
package payments

import (
	"time"

	"github.com/google/uuid"

	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
)

// ApplyInvoicePayment records one payment action against an invoice.
// Returns the effective (possibly clamped) amount applied; money.Zero
// means the invoice was already fully paid and nothing changed.
func ApplyInvoicePayment(inv *Invoice, amount money.Money, account ledger.AccountID) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Zero, ErrNonPositiveAmount
	}
	if account == "" {
		return money.Zero, ErrAccountRequired
	}

	effective := amount.Min(inv.Remaining())
	if !effective.IsPositive() {
		return money.Zero, nil
	}

	inv.Paid = inv.Paid.Add(effective)
	inv.AccountID = account // only the most recent payment account is retained
	inv.UpdatedAt = time.Now().UTC()
	return effective, nil
}

// ApplyExpensePayment records one payment action against an expense,
// appending a payment entry and recomputing the derived fields. The
// expense must be in normalized (entry-list) form; see Expense.Normalize.
func ApplyExpensePayment(exp *Expense, amount money.Money, account ledger.AccountID) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Zero, ErrNonPositiveAmount
	}
	if account == "" {
		return money.Zero, ErrAccountRequired
	}

	effective := amount.Min(exp.Remaining())
	if !effective.IsPositive() {
		return money.Zero, nil
	}

	now := time.Now().UTC()
	exp.Entries = append(exp.Entries, PaymentEntry{
		AccountID: account,
		Amount:    effective,
		PaidAt:    now,
	})
	exp.Paid = exp.EntriesTotal()
	exp.PaymentStatus = DeriveStatus(exp.Total, exp.Paid)
	exp.AccountID = account
	exp.UpdatedAt = now
	return effective, nil
}

// NewInvoice creates an invoice, optionally with an upfront payment.
// Constraints by declared status:
//   - not_paid: paid is forced to 0, no account required
//   - partial:  0 < paid <= total, account required
//   - paid:     paid is forced to equal total, account required
func NewInvoice(direction Direction, reference, party string, total money.Money, status Status, paid money.Money, account ledger.AccountID) (*Invoice, error) {
	if !total.IsPositive() {
		return nil, &CreationError{Status: status, Total: total, Paid: paid, Reason: ErrNonPositiveTotal}
	}
	paid, account, err := upfrontPayment(status, total, paid, account)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Invoice{
		ID:        InvoiceID(uuid.NewString()),
		Direction: direction,
		Reference: reference,
		PartyName: party,
		Total:     total,
		Paid:      paid,
		AccountID: account,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NewExpense creates an expense, optionally with an upfront payment. The
// same status constraints as NewInvoice apply; an upfront payment becomes
// the first payment entry.
func NewExpense(description, expenseType string, total money.Money, status Status, paid money.Money, account ledger.AccountID) (*Expense, error) {
	if !total.IsPositive() {
		return nil, &CreationError{Status: status, Total: total, Paid: paid, Reason: ErrNonPositiveTotal}
	}
	paid, account, err := upfrontPayment(status, total, paid, account)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	exp := &Expense{
		ID:            ExpenseID(uuid.NewString()),
		Description:   description,
		ExpenseType:   expenseType,
		Total:         total,
		Paid:          paid,
		PaymentStatus: DeriveStatus(total, paid),
		AccountID:     account,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if paid.IsPositive() {
		exp.Entries = []PaymentEntry{{AccountID: account, Amount: paid, PaidAt: now}}
	}
	return exp, nil
}

func upfrontPayment(status Status, total, paid money.Money, account ledger.AccountID) (money.Money, ledger.AccountID, error) {
	switch status {
	case StatusPaid:
		if account == "" {
			return money.Zero, "", &CreationError{Status: status, Total: total, Paid: paid, Reason: ErrAccountRequired}
		}
		return total, account, nil
	case StatusPartial:
		if account == "" {
			return money.Zero, "", &CreationError{Status: status, Total: total, Paid: paid, Reason: ErrAccountRequired}
		}
		if !paid.IsPositive() || paid.GreaterThan(total) {
			return money.Zero, "", &CreationError{Status: status, Total: total, Paid: paid, Reason: ErrInvalidPaidAmount}
		}
		return paid, account, nil
	default: // not_paid or unset
		return money.Zero, "", nil
	}
}
