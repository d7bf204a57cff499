/*
audit.go - Append-only audit trail of money actions

PURPOSE:
  Every payment, collection, transfer, and warehouse commit leaves an
  audit entry describing who did what, against which record, with which
  vault and amount. The trail is separate from the bookkeeping records
  themselves and is append-only: entries are never edited or removed.
*/
package books

import (
	"context"
	"time"

	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
)

type AuditAction string

const (
	AuditAccountCreated    AuditAction = "account_created"
	AuditOpeningEdited     AuditAction = "opening_balance_edited"
	AuditTransferRecorded  AuditAction = "transfer_recorded"
	AuditInvoiceCreated    AuditAction = "invoice_created"
	AuditInvoicePayment    AuditAction = "invoice_payment"
	AuditExpenseCreated    AuditAction = "expense_created"
	AuditExpensePayment    AuditAction = "expense_payment"
	AuditPurchaseCommitted AuditAction = "purchase_committed"
	AuditSaleCommitted     AuditAction = "sale_committed"
)

// AuditEntry records one action for external display.
type AuditEntry struct {
	ID        string
	At        time.Time
	ActorID   string
	Action    AuditAction
	Reference string // human-readable reference: invoice number, expense description
	AccountID ledger.AccountID
	Amount    money.Money
	Details   map[string]string
}

// AuditLog stores audit entries. Append-only.
type AuditLog interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	QueryAudit(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
}

// AuditFilter narrows an audit query. Zero values mean "any".
type AuditFilter struct {
	Action    AuditAction
	AccountID ledger.AccountID
	Limit     int
}
