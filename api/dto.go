/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  All monetary amounts and quantities cross the wire as decimal strings
  ("1234.50"), never as floats. Parsing happens in handlers.

VALIDATION:
  Validation is done in handlers and the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/payments"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountDTO represents a vault account in API responses.
type AccountDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	OpeningBalance string `json:"opening_balance"`
	Active         bool   `json:"active"`
	CreatedAt      string `json:"created_at,omitempty"`
	Balance        string `json:"balance,omitempty"` // derived, only on balance views
}

// CreateAccountRequest is the request to create a vault account.
type CreateAccountRequest struct {
	Name           string `json:"name"`
	Kind           string `json:"kind"`
	OpeningBalance string `json:"opening_balance,omitempty"`
}

// SetOpeningBalanceRequest edits an account's opening balance.
type SetOpeningBalanceRequest struct {
	OpeningBalance string `json:"opening_balance"`
}

// BalanceReportDTO is the full balance view across accounts.
type BalanceReportDTO struct {
	Accounts []AccountDTO `json:"accounts"`
	Total    string       `json:"total"`
	AsOf     string       `json:"as_of"`
}

// =============================================================================
// TRANSFERS
// =============================================================================

// TransferDTO represents a transfer in API responses.
type TransferDTO struct {
	ID        string `json:"id"`
	From      string `json:"from_account_id"`
	To        string `json:"to_account_id"`
	Amount    string `json:"amount"`
	Note      string `json:"note,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// CreateTransferRequest is the request to move money between vaults.
type CreateTransferRequest struct {
	From   string `json:"from_account_id"`
	To     string `json:"to_account_id"`
	Amount string `json:"amount"`
	Note   string `json:"note,omitempty"`
	Actor  string `json:"actor,omitempty"`
}

// =============================================================================
// INVOICES
// =============================================================================

// InvoiceDTO represents an invoice in API responses.
type InvoiceDTO struct {
	ID        string `json:"id"`
	Direction string `json:"direction"`
	Reference string `json:"reference,omitempty"`
	PartyName string `json:"party_name,omitempty"`
	Total     string `json:"total"`
	Paid      string `json:"paid"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
	AccountID string `json:"account_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// CreateInvoiceRequest is the request to register an invoice.
type CreateInvoiceRequest struct {
	Direction string `json:"direction"`
	Reference string `json:"reference,omitempty"`
	PartyName string `json:"party_name,omitempty"`
	Total     string `json:"total"`
	Status    string `json:"payment_status"`
	Paid      string `json:"paid,omitempty"`
	AccountID string `json:"account_id,omitempty"`
	Actor     string `json:"actor,omitempty"`
}

// PaymentRequest is the request to pay against an invoice or expense.
type PaymentRequest struct {
	Amount    string `json:"amount"`
	AccountID string `json:"account_id"`
	Actor     string `json:"actor,omitempty"`
}

// PaymentResultDTO reports the clamped amount actually applied.
type PaymentResultDTO struct {
	Applied string      `json:"applied"`
	Invoice *InvoiceDTO `json:"invoice,omitempty"`
	Expense *ExpenseDTO `json:"expense,omitempty"`
}

// =============================================================================
// EXPENSES
// =============================================================================

// PaymentEntryDTO is one recorded partial payment.
type PaymentEntryDTO struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	PaidAt    string `json:"paid_at"`
}

// AccountShareDTO is the per-vault share of an expense's payments.
type AccountShareDTO struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
}

// ExpenseDTO represents an expense in API responses.
type ExpenseDTO struct {
	ID            string            `json:"id"`
	Description   string            `json:"description,omitempty"`
	ExpenseType   string            `json:"expense_type,omitempty"`
	Total         string            `json:"total"`
	Paid          string            `json:"paid"`
	Remaining     string            `json:"remaining"`
	PaymentStatus string            `json:"payment_status"`
	Entries       []PaymentEntryDTO `json:"payment_entries"`
	Shares        []AccountShareDTO `json:"account_shares,omitempty"`
	AccountID     string            `json:"account_id,omitempty"`
	CreatedAt     string            `json:"created_at,omitempty"`
	UpdatedAt     string            `json:"updated_at,omitempty"`
}

// CreateExpenseRequest is the request to register an expense.
type CreateExpenseRequest struct {
	Description string `json:"description"`
	ExpenseType string `json:"expense_type,omitempty"`
	Total       string `json:"total"`
	Status      string `json:"payment_status"`
	Paid        string `json:"paid,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	Actor       string `json:"actor,omitempty"`
}

// =============================================================================
// WAREHOUSE
// =============================================================================

// MovementDTO represents one stock movement.
type MovementDTO struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Type       string `json:"type"`
	Quantity   string `json:"quantity"`
	Unit       string `json:"unit,omitempty"`
	UnitCost   string `json:"unit_cost,omitempty"`
	TotalCost  string `json:"total_cost,omitempty"`
	InvoiceRef string `json:"invoice_ref,omitempty"`
	CreatedBy  string `json:"created_by,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// StockCardDTO is the per-product stock summary plus movement history.
type StockCardDTO struct {
	ProductID         string        `json:"product_id"`
	AvailableQuantity string        `json:"available_quantity"`
	Unit              string        `json:"unit,omitempty"`
	AverageUnitCost   string        `json:"average_unit_cost"`
	EffectiveUnitCost string        `json:"effective_unit_cost"`
	Movements         []MovementDTO `json:"movements"`
}

// CommitLineRequest is one line of a warehouse commit.
type CommitLineRequest struct {
	ProductID string `json:"product_id"`
	Quantity  string `json:"quantity"`
	Unit      string `json:"unit,omitempty"`
	UnitCost  string `json:"unit_cost,omitempty"`  // purchases only
	TotalCost string `json:"total_cost,omitempty"` // purchases only
}

// CommitRequest commits a purchase or sale to the warehouse.
type CommitRequest struct {
	InvoiceRef string              `json:"invoice_ref,omitempty"`
	Lines      []CommitLineRequest `json:"lines"`
	Actor      string              `json:"actor,omitempty"`
}

// CommitSaleResultDTO reports the cost of goods sold for a sale commit.
type CommitSaleResultDTO struct {
	CostOfGoodsSold string `json:"cost_of_goods_sold"`
}

// ValuationDTO is the warehouse-wide inventory valuation.
type ValuationDTO struct {
	Total string `json:"total"`
	AsOf  string `json:"as_of"`
}

// =============================================================================
// AUDIT
// =============================================================================

// AuditEntryDTO represents one audit trail entry.
type AuditEntryDTO struct {
	ID        string            `json:"id"`
	At        string            `json:"at"`
	ActorID   string            `json:"actor_id,omitempty"`
	Action    string            `json:"action"`
	Reference string            `json:"reference,omitempty"`
	AccountID string            `json:"account_id,omitempty"`
	Amount    string            `json:"amount,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toAccountDTO(a ledger.Account) AccountDTO {
	return AccountDTO{
		ID:             string(a.ID),
		Name:           a.Name,
		Kind:           string(a.Kind),
		OpeningBalance: a.OpeningBalance.String(),
		Active:         a.Active,
		CreatedAt:      a.CreatedAt.Format(time.RFC3339),
	}
}

func toTransferDTO(t ledger.Transfer) TransferDTO {
	return TransferDTO{
		ID:        string(t.ID),
		From:      string(t.FromAccountID),
		To:        string(t.ToAccountID),
		Amount:    t.Amount.String(),
		Note:      t.Note,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func toInvoiceDTO(inv payments.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:        string(inv.ID),
		Direction: string(inv.Direction),
		Reference: inv.Reference,
		PartyName: inv.PartyName,
		Total:     inv.Total.String(),
		Paid:      inv.Paid.String(),
		Remaining: inv.Remaining().String(),
		Status:    string(inv.Status()),
		AccountID: string(inv.AccountID),
		CreatedAt: inv.CreatedAt.Format(time.RFC3339),
		UpdatedAt: inv.UpdatedAt.Format(time.RFC3339),
	}
}

func toExpenseDTO(exp payments.Expense) ExpenseDTO {
	entries := make([]PaymentEntryDTO, len(exp.Entries))
	for i, e := range exp.Entries {
		entries[i] = PaymentEntryDTO{
			AccountID: string(e.AccountID),
			Amount:    e.Amount.String(),
			PaidAt:    e.PaidAt.Format(time.RFC3339),
		}
	}
	var shares []AccountShareDTO
	for _, s := range payments.GroupEntriesByAccount(exp.Entries) {
		shares = append(shares, AccountShareDTO{
			AccountID: string(s.AccountID),
			Amount:    s.Amount.String(),
		})
	}
	return ExpenseDTO{
		ID:            string(exp.ID),
		Description:   exp.Description,
		ExpenseType:   exp.ExpenseType,
		Total:         exp.Total.String(),
		Paid:          exp.Paid.String(),
		Remaining:     exp.Remaining().String(),
		PaymentStatus: string(exp.PaymentStatus),
		Entries:       entries,
		Shares:        shares,
		AccountID:     string(exp.AccountID),
		CreatedAt:     exp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     exp.UpdatedAt.Format(time.RFC3339),
	}
}

func toMovementDTO(m inventory.Movement) MovementDTO {
	dto := MovementDTO{
		ID:         string(m.ID),
		ProductID:  string(m.ProductID),
		Type:       string(m.Type),
		Quantity:   m.Quantity.String(),
		Unit:       m.Unit,
		InvoiceRef: m.InvoiceRef,
		CreatedBy:  m.CreatedBy,
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
	if !m.UnitCost.IsZero() {
		dto.UnitCost = m.UnitCost.String()
	}
	if !m.TotalCost.IsZero() {
		dto.TotalCost = m.TotalCost.String()
	}
	return dto
}

func toMovementDTOs(movements []inventory.Movement) []MovementDTO {
	dtos := make([]MovementDTO, len(movements))
	for i, m := range movements {
		dtos[i] = toMovementDTO(m)
	}
	return dtos
}

func toAuditEntryDTO(e books.AuditEntry) AuditEntryDTO {
	dto := AuditEntryDTO{
		ID:        e.ID,
		At:        e.At.Format(time.RFC3339),
		ActorID:   e.ActorID,
		Action:    string(e.Action),
		Reference: e.Reference,
		AccountID: string(e.AccountID),
		Details:   e.Details,
	}
	if !e.Amount.IsZero() {
		dto.Amount = e.Amount.String()
	}
	return dto
}

// parseAmount parses a decimal string, treating empty as zero.
func parseAmount(raw string) (money.Money, error) {
	if raw == "" {
		return money.Zero, nil
	}
	return money.Parse(raw)
}
