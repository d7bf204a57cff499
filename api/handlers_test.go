/*
handlers_test.go - HTTP-level tests for the API

Tests go through the real router with an in-memory store, exercising the
JSON contract: decimal-string amounts, clamped payment results, derived
balances, and error statuses.
*/
package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bookkeeper/api"
	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/store/memory"
)

type testServer struct {
	router http.Handler
	store  *memory.Store
	svc    *books.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st := memory.New()
	vaults := ledger.NewService(st, st)
	svc := books.NewService(vaults, st, st, st, st, zerolog.Nop())
	handler := api.NewHandler(svc, st, zerolog.Nop())
	return &testServer{
		router: api.NewRouter(handler, []string{"*"}),
		store:  st,
		svc:    svc,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestAccounts_CreateAndBalanceReport(t *testing.T) {
	ts := newTestServer(t)

	// WHEN: Two accounts are created
	rec := ts.do(t, http.MethodPost, "/api/accounts", map[string]string{
		"name": "Office Safe", "kind": "personal", "opening_balance": "500",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	safe := decode[map[string]any](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/accounts", map[string]string{
		"name": "Business Bank", "kind": "bank", "opening_balance": "2000",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	bank := decode[map[string]any](t, rec)

	// AND: Money moves between them
	rec = ts.do(t, http.MethodPost, "/api/transfers", map[string]string{
		"from_account_id": bank["id"].(string),
		"to_account_id":   safe["id"].(string),
		"amount":          "300",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// THEN: The balance report reflects the fold
	rec = ts.do(t, http.MethodGet, "/api/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decode[struct {
		Accounts []struct {
			Name    string `json:"name"`
			Balance string `json:"balance"`
		} `json:"accounts"`
		Total string `json:"total"`
	}](t, rec)

	require.Len(t, report.Accounts, 2)
	assert.Equal(t, "2500", report.Total)
	byName := map[string]string{}
	for _, a := range report.Accounts {
		byName[a.Name] = a.Balance
	}
	assert.Equal(t, "800", byName["Office Safe"])
	assert.Equal(t, "1700", byName["Business Bank"])
}

func TestTransfers_ValidationErrors(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/accounts", map[string]string{"name": "Safe"})
	require.Equal(t, http.StatusCreated, rec.Code)
	safe := decode[map[string]any](t, rec)
	id := safe["id"].(string)

	// Same account on both sides is a 400
	rec = ts.do(t, http.MethodPost, "/api/transfers", map[string]string{
		"from_account_id": id, "to_account_id": id, "amount": "10",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Garbage amount is a 400
	rec = ts.do(t, http.MethodPost, "/api/transfers", map[string]string{
		"from_account_id": id, "to_account_id": "other", "amount": "ten",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoices_PaymentIsClamped(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	bank, err := ts.svc.Vaults.CreateAccount(ctx, "Bank", ledger.KindBank, money.MustParse("1000"))
	require.NoError(t, err)

	// GIVEN: A 100 purchase invoice, not paid
	rec := ts.do(t, http.MethodPost, "/api/invoices", map[string]string{
		"direction":      "purchase",
		"reference":      "P-1",
		"party_name":     "Supplier",
		"total":          "100",
		"payment_status": "not_paid",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	invoiceID := created["id"].(string)

	// WHEN: 80 then 50 are paid
	rec = ts.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/payments", map[string]string{
		"amount": "80", "account_id": string(bank.ID),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/invoices/"+invoiceID+"/payments", map[string]string{
		"amount": "50", "account_id": string(bank.ID),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// THEN: The second response reports the clamped 20 and a settled invoice
	result := decode[struct {
		Applied string `json:"applied"`
		Invoice struct {
			Paid      string `json:"paid"`
			Remaining string `json:"remaining"`
			Status    string `json:"status"`
		} `json:"invoice"`
	}](t, rec)
	assert.Equal(t, "20", result.Applied)
	assert.Equal(t, "100", result.Invoice.Paid)
	assert.Equal(t, "0", result.Invoice.Remaining)
	assert.Equal(t, "paid", result.Invoice.Status)
}

func TestInvoices_NotFoundAndBadCreation(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/invoices/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/invoices/nope/payments", map[string]string{
		"amount": "10", "account_id": "bank",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Partial status without an account is rejected up front
	rec = ts.do(t, http.MethodPost, "/api/invoices", map[string]string{
		"direction":      "sale",
		"total":          "100",
		"payment_status": "partial",
		"paid":           "40",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenses_SharesInResponse(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	bank, err := ts.svc.Vaults.CreateAccount(ctx, "Bank", ledger.KindBank, money.MustParse("1000"))
	require.NoError(t, err)
	safe, err := ts.svc.Vaults.CreateAccount(ctx, "Safe", ledger.KindPersonal, money.MustParse("500"))
	require.NoError(t, err)

	rec := ts.do(t, http.MethodPost, "/api/expenses", map[string]string{
		"description":    "rent",
		"total":          "900",
		"payment_status": "partial",
		"paid":           "400",
		"account_id":     string(bank.ID),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[map[string]any](t, rec)
	expenseID := created["id"].(string)

	rec = ts.do(t, http.MethodPost, "/api/expenses/"+expenseID+"/payments", map[string]string{
		"amount": "200", "account_id": string(safe.ID),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/expenses/"+expenseID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	expense := decode[struct {
		Paid    string `json:"paid"`
		Entries []struct {
			AccountID string `json:"account_id"`
			Amount    string `json:"amount"`
		} `json:"payment_entries"`
		Shares []struct {
			AccountID string `json:"account_id"`
			Amount    string `json:"amount"`
		} `json:"account_shares"`
	}](t, rec)

	assert.Equal(t, "600", expense.Paid)
	require.Len(t, expense.Entries, 2)
	require.Len(t, expense.Shares, 2)
	assert.Equal(t, string(bank.ID), expense.Shares[0].AccountID)
	assert.Equal(t, "400", expense.Shares[0].Amount)
}

func TestWarehouse_PurchaseSaleAndValuation(t *testing.T) {
	ts := newTestServer(t)

	// GIVEN: Two purchase lots committed in one request
	rec := ts.do(t, http.MethodPost, "/api/warehouse/purchases", map[string]any{
		"invoice_ref": "P-1",
		"lines": []map[string]string{
			{"product_id": "oak", "quantity": "10", "unit": "pcs", "unit_cost": "5"},
			{"product_id": "oak", "quantity": "10", "unit": "pcs", "unit_cost": "7"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	// WHEN: 5 units ship
	rec = ts.do(t, http.MethodPost, "/api/warehouse/sales", map[string]any{
		"invoice_ref": "S-1",
		"lines": []map[string]string{
			{"product_id": "oak", "quantity": "5", "unit": "pcs"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	sale := decode[map[string]string](t, rec)
	assert.Equal(t, "30", sale["cost_of_goods_sold"], "5 x avg 6")

	// THEN: The stock card shows 15 on hand at avg 6
	rec = ts.do(t, http.MethodGet, "/api/products/oak/stock-card", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	card := decode[struct {
		AvailableQuantity string `json:"available_quantity"`
		AverageUnitCost   string `json:"average_unit_cost"`
		Movements         []any  `json:"movements"`
	}](t, rec)
	assert.Equal(t, "15", card.AvailableQuantity)
	assert.Equal(t, "6", card.AverageUnitCost)
	assert.Len(t, card.Movements, 3)

	// AND: The valuation is 15 x 6
	rec = ts.do(t, http.MethodGet, "/api/warehouse/valuation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	valuation := decode[map[string]string](t, rec)
	assert.Equal(t, "90", valuation["total"])
}

func TestWarehouse_BadLineRejectsWholeCommit(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/warehouse/purchases", map[string]any{
		"invoice_ref": "P-1",
		"lines": []map[string]string{
			{"product_id": "oak", "quantity": "10", "unit_cost": "5"},
			{"product_id": "oak", "quantity": "-2", "unit_cost": "5"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/products/oak/movements", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	movements := decode[[]any](t, rec)
	assert.Empty(t, movements)
}

func TestAudit_FiltersByAction(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	bank, err := ts.svc.Vaults.CreateAccount(ctx, "Bank", ledger.KindBank, money.MustParse("100"))
	require.NoError(t, err)
	safe, err := ts.svc.Vaults.CreateAccount(ctx, "Safe", ledger.KindPersonal, money.MustParse("0"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := ts.svc.RecordTransfer(ctx, bank.ID, safe.ID, money.MustParse("5"), fmt.Sprintf("t%d", i), "alex")
		require.NoError(t, err)
	}

	rec := ts.do(t, http.MethodGet, "/api/audit?action=transfer_recorded&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]map[string]any](t, rec)
	assert.Len(t, entries, 2)
	assert.Equal(t, "transfer_recorded", entries[0]["action"])
}

func TestReset_ReseedsDemoData(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decode[[]map[string]any](t, rec)
	assert.NotEmpty(t, accounts, "demo data is present after reset")

	rec = ts.do(t, http.MethodGet, "/api/balances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
