/*
handlers.go - HTTP API handlers for the bookkeeping engine

PURPOSE:
  Exposes the ledger, payment, and inventory engines via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Accounts:
    GET    /api/accounts                        List vault accounts
    POST   /api/accounts                        Create account
    GET    /api/accounts/{id}                   Get account with balance
    PUT    /api/accounts/{id}/opening-balance   Edit opening balance
    POST   /api/accounts/{id}/deactivate        Flag account inactive
    GET    /api/accounts/{id}/transfers         Transfers touching account

  Balances:
    GET    /api/balances                        Full balance report

  Transfers:
    GET    /api/transfers                       List transfers
    POST   /api/transfers                       Record transfer

  Invoices:
    GET    /api/invoices?direction=             List invoices
    POST   /api/invoices                        Register invoice
    GET    /api/invoices/{id}                   Get invoice
    POST   /api/invoices/{id}/payments          Pay / collect (clamped)

  Expenses:
    GET    /api/expenses                        List expenses
    POST   /api/expenses                        Register expense
    GET    /api/expenses/{id}                   Get expense with shares
    POST   /api/expenses/{id}/payments          Pay (appends entry)

  Warehouse:
    POST   /api/warehouse/purchases             Commit purchase movements
    POST   /api/warehouse/sales                 Commit sale movements (COGS)
    GET    /api/warehouse/valuation             Inventory valuation
    GET    /api/products/{id}/stock-card        Stock card
    GET    /api/products/{id}/movements         Movement history
    POST   /api/products/{id}/adjustments       Manual quantity adjustment

  Audit:
    GET    /api/audit                           Query audit trail

  Admin:
    POST   /api/reset                           Database reset (dev only)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Record not found
  - 409: Concurrent-update conflict
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/payments"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter clears all stored data. Implemented by both stores; used by the
// dev-only reset endpoint.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Books *books.Service
	Reset Resetter

	log zerolog.Logger
}

// NewHandler creates a new handler around the composed service.
func NewHandler(svc *books.Service, reset Resetter, log zerolog.Logger) *Handler {
	return &Handler{
		Books: svc,
		Reset: reset,
		log:   log.With().Str("component", "api").Logger(),
	}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all vault accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Books.Vaults.Accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		dtos[i] = toAccountDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount registers a new vault account.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	opening, err := parseAmount(req.OpeningBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid opening_balance", err)
		return
	}

	kind := ledger.AccountKind(req.Kind)
	if kind == "" {
		kind = ledger.KindPersonal
	}

	account, err := h.Books.Vaults.CreateAccount(r.Context(), req.Name, kind, opening)
	if err != nil {
		writeDomainError(w, "Failed to create account", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountDTO(*account))
}

// GetAccount returns one account including its derived balance.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	account, err := h.Books.Vaults.Accounts.GetAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get account", err)
		return
	}
	if account == nil {
		writeError(w, http.StatusNotFound, "Account not found", nil)
		return
	}

	balances, err := h.Books.Balances(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balance", err)
		return
	}

	dto := toAccountDTO(*account)
	dto.Balance = balances[id].String()
	writeJSON(w, http.StatusOK, dto)
}

// SetOpeningBalance edits an account's opening balance. The derived
// balance shifts on the next read; no history is rewritten.
func (h *Handler) SetOpeningBalance(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	var req SetOpeningBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	opening, err := parseAmount(req.OpeningBalance)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid opening_balance", err)
		return
	}

	account, err := h.Books.Vaults.SetOpeningBalance(r.Context(), id, opening)
	if err != nil {
		writeDomainError(w, "Failed to set opening balance", err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(*account))
}

// DeactivateAccount flags an account inactive. History is kept and the
// balance keeps being computed.
func (h *Handler) DeactivateAccount(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	if err := h.Books.Vaults.DeactivateAccount(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to deactivate account", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

// ListAccountTransfers returns transfers touching the account.
func (h *Handler) ListAccountTransfers(w http.ResponseWriter, r *http.Request) {
	id := ledger.AccountID(chi.URLParam(r, "id"))

	transfers, err := h.Books.Vaults.Transfers.ListTransfersByAccount(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transfers", err)
		return
	}

	dtos := make([]TransferDTO, len(transfers))
	for i, t := range transfers {
		dtos[i] = toTransferDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// BALANCE REPORT
// =============================================================================

// GetBalances returns every account with its fully derived balance
// (transfer fold plus invoice and expense effects) and the grand total.
func (h *Handler) GetBalances(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.Books.Vaults.Accounts.ListAccounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}
	balances, err := h.Books.Balances(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute balances", err)
		return
	}

	report := BalanceReportDTO{
		Accounts: make([]AccountDTO, len(accounts)),
		Total:    ledger.TotalBalance(balances).String(),
		AsOf:     time.Now().UTC().Format(time.RFC3339),
	}
	for i, a := range accounts {
		dto := toAccountDTO(a)
		dto.Balance = balances[a.ID].String()
		report.Accounts[i] = dto
	}
	writeJSON(w, http.StatusOK, report)
}

// =============================================================================
// TRANSFER HANDLERS
// =============================================================================

// ListTransfers returns all transfers, oldest first.
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.Books.Vaults.Transfers.ListTransfers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transfers", err)
		return
	}

	dtos := make([]TransferDTO, len(transfers))
	for i, t := range transfers {
		dtos[i] = toTransferDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTransfer records a money movement between two vaults.
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	transfer, err := h.Books.RecordTransfer(r.Context(),
		ledger.AccountID(req.From), ledger.AccountID(req.To), amount, req.Note, req.Actor)
	if err != nil {
		writeDomainError(w, "Failed to record transfer", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransferDTO(*transfer))
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// ListInvoices returns invoices, optionally filtered by ?direction=.
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	direction := payments.Direction(r.URL.Query().Get("direction"))

	invoices, err := h.Books.Invoices.ListInvoices(r.Context(), direction)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list invoices", err)
		return
	}

	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateInvoice registers a purchase or sales invoice, with an optional
// upfront payment.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	total, err := parseAmount(req.Total)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total", err)
		return
	}
	paid, err := parseAmount(req.Paid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid", err)
		return
	}

	invoice, err := h.Books.CreateInvoice(r.Context(),
		payments.Direction(req.Direction), req.Reference, req.PartyName,
		total, payments.Status(req.Status), paid,
		ledger.AccountID(req.AccountID), req.Actor)
	if err != nil {
		writeDomainError(w, "Failed to create invoice", err)
		return
	}
	writeJSON(w, http.StatusCreated, toInvoiceDTO(*invoice))
}

// GetInvoice returns one invoice.
func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id := payments.InvoiceID(chi.URLParam(r, "id"))

	invoice, err := h.Books.Invoices.GetInvoice(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get invoice", err)
		return
	}
	if invoice == nil {
		writeError(w, http.StatusNotFound, "Invoice not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(*invoice))
}

// PayInvoice applies a payment or collection against an invoice. The
// applied amount is clamped to the remaining balance; the response reports
// what was actually applied.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	id := payments.InvoiceID(chi.URLParam(r, "id"))

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	invoice, applied, err := h.Books.PayInvoice(r.Context(), id, amount,
		ledger.AccountID(req.AccountID), req.Actor)
	if err != nil {
		writeDomainError(w, "Failed to pay invoice", err)
		return
	}

	dto := toInvoiceDTO(*invoice)
	writeJSON(w, http.StatusOK, PaymentResultDTO{
		Applied: applied.String(),
		Invoice: &dto,
	})
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns all expenses, newest first.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.Books.Expenses.ListExpenses(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list expenses", err)
		return
	}

	dtos := make([]ExpenseDTO, len(expenses))
	for i, exp := range expenses {
		dtos[i] = toExpenseDTO(exp)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateExpense registers an expense, with an optional upfront payment.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	total, err := parseAmount(req.Total)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid total", err)
		return
	}
	paid, err := parseAmount(req.Paid)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid paid", err)
		return
	}

	expense, err := h.Books.CreateExpense(r.Context(),
		req.Description, req.ExpenseType,
		total, payments.Status(req.Status), paid,
		ledger.AccountID(req.AccountID), req.Actor)
	if err != nil {
		writeDomainError(w, "Failed to create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseDTO(*expense))
}

// GetExpense returns one expense including its per-vault payment shares.
func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	id := payments.ExpenseID(chi.URLParam(r, "id"))

	expense, err := h.Books.Expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get expense", err)
		return
	}
	if expense == nil {
		writeError(w, http.StatusNotFound, "Expense not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseDTO(*expense))
}

// PayExpense applies a payment against an expense, appending a payment
// entry. The applied amount is clamped to the remaining balance.
func (h *Handler) PayExpense(w http.ResponseWriter, r *http.Request) {
	id := payments.ExpenseID(chi.URLParam(r, "id"))

	var req PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	expense, applied, err := h.Books.PayExpense(r.Context(), id, amount,
		ledger.AccountID(req.AccountID), req.Actor)
	if err != nil {
		writeDomainError(w, "Failed to pay expense", err)
		return
	}

	dto := toExpenseDTO(*expense)
	writeJSON(w, http.StatusOK, PaymentResultDTO{
		Applied: applied.String(),
		Expense: &dto,
	})
}

// =============================================================================
// WAREHOUSE HANDLERS
// =============================================================================

// CommitPurchase writes the inbound movements of a purchase invoice,
// all-or-nothing.
func (h *Handler) CommitPurchase(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lines := make([]books.PurchaseLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		quantity, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid quantity", err)
			return
		}
		unitCost, err := parseAmount(l.UnitCost)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid unit_cost", err)
			return
		}
		totalCost, err := parseAmount(l.TotalCost)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid total_cost", err)
			return
		}
		lines = append(lines, books.PurchaseLine{
			ProductID: inventory.ProductID(l.ProductID),
			Quantity:  quantity,
			Unit:      l.Unit,
			UnitCost:  unitCost,
			TotalCost: totalCost,
		})
	}

	if err := h.Books.CommitPurchase(r.Context(), req.InvoiceRef, lines, req.Actor); err != nil {
		writeDomainError(w, "Failed to commit purchase", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "committed"})
}

// CommitSale writes the outbound movements of a sales invoice,
// all-or-nothing, and returns the cost of goods sold at the current
// weighted-average cost.
func (h *Handler) CommitSale(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lines := make([]books.SaleLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		quantity, err := decimal.NewFromString(l.Quantity)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid quantity", err)
			return
		}
		lines = append(lines, books.SaleLine{
			ProductID: inventory.ProductID(l.ProductID),
			Quantity:  quantity,
			Unit:      l.Unit,
		})
	}

	cogs, err := h.Books.CommitSale(r.Context(), req.InvoiceRef, lines, req.Actor)
	if err != nil {
		writeDomainError(w, "Failed to commit sale", err)
		return
	}
	writeJSON(w, http.StatusCreated, CommitSaleResultDTO{CostOfGoodsSold: cogs.String()})
}

// GetValuation returns the warehouse-wide inventory valuation.
func (h *Handler) GetValuation(w http.ResponseWriter, r *http.Request) {
	total, err := h.Books.Stock.Valuation(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute valuation", err)
		return
	}
	writeJSON(w, http.StatusOK, ValuationDTO{
		Total: total.String(),
		AsOf:  time.Now().UTC().Format(time.RFC3339),
	})
}

// GetStockCard returns a product's derived stock state and full movement
// history.
func (h *Handler) GetStockCard(w http.ResponseWriter, r *http.Request) {
	id := inventory.ProductID(chi.URLParam(r, "id"))
	ctx := r.Context()

	movements, err := h.Books.Stock.Movements.MovementsByProduct(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load movements", err)
		return
	}
	effective, err := h.Books.Stock.EffectiveUnitCost(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute unit cost", err)
		return
	}

	writeJSON(w, http.StatusOK, StockCardDTO{
		ProductID:         string(id),
		AvailableQuantity: inventory.AvailableQuantityOf(movements).String(),
		Unit:              inventory.UnitOf(movements),
		AverageUnitCost:   inventory.AverageUnitCostOf(movements).String(),
		EffectiveUnitCost: effective.Cost.String(),
		Movements:         toMovementDTOs(movements),
	})
}

// ListProductMovements returns a product's movement history, oldest first.
func (h *Handler) ListProductMovements(w http.ResponseWriter, r *http.Request) {
	id := inventory.ProductID(chi.URLParam(r, "id"))

	movements, err := h.Books.Stock.Movements.MovementsByProduct(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load movements", err)
		return
	}
	writeJSON(w, http.StatusOK, toMovementDTOs(movements))
}

// CreateAdjustment records a manual quantity adjustment for a product.
func (h *Handler) CreateAdjustment(w http.ResponseWriter, r *http.Request) {
	id := inventory.ProductID(chi.URLParam(r, "id"))

	var req CommitLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid quantity", err)
		return
	}
	unitCost, err := parseAmount(req.UnitCost)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid unit_cost", err)
		return
	}

	movementID, err := h.Books.Stock.RecordMovement(r.Context(), inventory.Movement{
		ProductID: id,
		Type:      inventory.MovementAdjustment,
		Quantity:  quantity,
		Unit:      req.Unit,
		UnitCost:  unitCost,
	})
	if err != nil {
		writeDomainError(w, "Failed to record adjustment", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(movementID)})
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// QueryAudit returns audit entries, newest first. Supports ?action=,
// ?account_id= and ?limit= filters.
func (h *Handler) QueryAudit(w http.ResponseWriter, r *http.Request) {
	filter := books.AuditFilter{
		Action:    books.AuditAction(r.URL.Query().Get("action")),
		AccountID: ledger.AccountID(r.URL.Query().Get("account_id")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		filter.Limit = limit
	}

	entries, err := h.Books.Audit.QueryAudit(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toAuditEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data and reseeds the demo set. Dev only.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if h.Reset == nil {
		writeError(w, http.StatusForbidden, "Reset not available", nil)
		return
	}
	if err := h.Reset.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := SeedDemo(r.Context(), h.Books); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	h.log.Info().Msg("database reset and reseeded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case payments.IsNotFound(err) || ledger.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payments.IsRetryable(err):
		writeError(w, http.StatusConflict, message, err)
	case payments.IsClientError(err) || ledger.IsClientError(err) || inventory.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
