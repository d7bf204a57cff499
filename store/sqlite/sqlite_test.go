package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/payments"
	"github.com/warp/bookkeeper/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAccounts_RoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	a := ledger.Account{
		ID:             "acc-1",
		Name:           "Office Safe",
		Kind:           ledger.KindPersonal,
		OpeningBalance: money.MustParse("123.45"),
		Active:         true,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveAccount(ctx, a))

	got, err := store.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, a.Name, got.Name)
	assert.True(t, got.OpeningBalance.Equal(a.OpeningBalance))
	assert.True(t, got.Active)

	// Upsert: an edit overwrites in place
	a.OpeningBalance = money.FromInt(500)
	a.Active = false
	require.NoError(t, store.SaveAccount(ctx, a))

	got, err = store.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.OpeningBalance.Equal(money.FromInt(500)))
	assert.False(t, got.Active)

	// Missing account is nil, not an error
	missing, err := store.GetAccount(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTransfers_AppendAndListByAccount(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	transfers := []ledger.Transfer{
		{ID: "t-1", FromAccountID: "bank", ToAccountID: "safe", Amount: money.FromInt(100), CreatedAt: base},
		{ID: "t-2", FromAccountID: "safe", ToAccountID: "petty", Amount: money.FromInt(30), Note: "float", CreatedAt: base.Add(time.Second)},
		{ID: "t-3", FromAccountID: "bank", ToAccountID: "petty", Amount: money.FromInt(10), CreatedAt: base.Add(2 * time.Second)},
	}
	for _, tr := range transfers {
		require.NoError(t, store.AppendTransfer(ctx, tr))
	}

	all, err := store.ListTransfers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ledger.TransferID("t-1"), all[0].ID, "oldest first")
	assert.Equal(t, "float", all[1].Note)

	bySafe, err := store.ListTransfersByAccount(ctx, "safe")
	require.NoError(t, err)
	require.Len(t, bySafe, 2, "both sides count")
}

func TestInvoices_VersionedUpdate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	inv := payments.Invoice{
		ID:        "inv-1",
		Direction: payments.DirectionPurchase,
		Reference: "P-1",
		PartyName: "Supplier",
		Total:     money.FromInt(100),
		Paid:      money.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.InsertInvoice(ctx, inv))

	got, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.Version)

	// Update at the stored version succeeds and bumps it
	got.Paid = money.FromInt(40)
	got.AccountID = "bank"
	require.NoError(t, store.UpdateInvoice(ctx, *got))

	after, err := store.GetInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.Version)
	assert.True(t, after.Paid.Equal(money.FromInt(40)))

	// A second write at the stale version conflicts
	got.Paid = money.FromInt(60)
	err = store.UpdateInvoice(ctx, *got)
	assert.ErrorIs(t, err, payments.ErrConflict)

	// A write against a vanished record reports not found
	ghost := *after
	ghost.ID = "inv-ghost"
	err = store.UpdateInvoice(ctx, ghost)
	assert.ErrorIs(t, err, payments.ErrInvoiceNotFound)
}

func TestInvoices_ListByDirection(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	for i, d := range []payments.Direction{
		payments.DirectionPurchase, payments.DirectionSale, payments.DirectionSale,
	} {
		require.NoError(t, store.InsertInvoice(ctx, payments.Invoice{
			ID:        payments.InvoiceID(string(rune('a' + i))),
			Direction: d,
			Total:     money.FromInt(10),
			Paid:      money.Zero,
			CreatedAt: now.Add(time.Duration(i) * time.Second),
			UpdatedAt: now,
		}))
	}

	sales, err := store.ListInvoices(ctx, payments.DirectionSale)
	require.NoError(t, err)
	assert.Len(t, sales, 2)

	all, err := store.ListInvoices(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestExpenses_EntriesRoundTripAndLegacyNormalization(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	// An expense with two payment entries round-trips through JSON
	withEntries := payments.Expense{
		ID:            "exp-1",
		Description:   "rent",
		Total:         money.FromInt(900),
		Paid:          money.FromInt(600),
		PaymentStatus: payments.StatusPartial,
		Entries: []payments.PaymentEntry{
			{AccountID: "bank", Amount: money.FromInt(400), PaidAt: now},
			{AccountID: "safe", Amount: money.FromInt(200), PaidAt: now.Add(time.Hour)},
		},
		AccountID: "safe",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.InsertExpense(ctx, withEntries))

	got, err := store.GetExpense(ctx, withEntries.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, ledger.AccountID("bank"), got.Entries[0].AccountID)
	assert.True(t, got.Entries[1].Amount.Equal(money.FromInt(200)))

	// A legacy record (no entries, only the account/paid pair) comes back
	// normalized into a one-entry list
	legacy := payments.Expense{
		ID:            "exp-legacy",
		Description:   "old utilities",
		Total:         money.FromInt(300),
		Paid:          money.FromInt(120),
		PaymentStatus: payments.StatusPartial,
		AccountID:     "bank",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.InsertExpense(ctx, legacy))

	got, err = store.GetExpense(ctx, legacy.ID)
	require.NoError(t, err)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, ledger.AccountID("bank"), got.Entries[0].AccountID)
	assert.True(t, got.Entries[0].Amount.Equal(money.FromInt(120)))
}

func TestExpenses_VersionedUpdate(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	exp := payments.Expense{
		ID:            "exp-1",
		Total:         money.FromInt(100),
		Paid:          money.Zero,
		PaymentStatus: payments.StatusNotPaid,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, store.InsertExpense(ctx, exp))

	stored, err := store.GetExpense(ctx, exp.ID)
	require.NoError(t, err)

	stored.Paid = money.FromInt(50)
	stored.PaymentStatus = payments.StatusPartial
	require.NoError(t, store.UpdateExpense(ctx, *stored))

	// Stale version conflicts
	err = store.UpdateExpense(ctx, *stored)
	assert.ErrorIs(t, err, payments.ErrConflict)

	err = store.UpdateExpense(ctx, payments.Expense{ID: "ghost", Total: money.FromInt(1), Paid: money.Zero})
	assert.ErrorIs(t, err, payments.ErrExpenseNotFound)
}

func TestMovements_WithTxRollsBackOnError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(s inventory.MovementStore) error {
		if err := s.AppendMovement(ctx, inventory.Movement{
			ID: "m-1", ProductID: "oak", Type: inventory.MovementPurchase,
			Quantity: decimal.NewFromInt(10), UnitCost: money.FromInt(5),
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	movements, err := store.AllMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements, "rolled back")

	// A clean transaction commits both writes
	err = store.WithTx(ctx, func(s inventory.MovementStore) error {
		for _, id := range []inventory.MovementID{"m-2", "m-3"} {
			if err := s.AppendMovement(ctx, inventory.Movement{
				ID: id, ProductID: "oak", Type: inventory.MovementPurchase,
				Quantity: decimal.NewFromInt(1), UnitCost: money.FromInt(5),
				InvoiceRef: "P-1", CreatedAt: time.Now().UTC(),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	movements, err = store.MovementsByInvoice(ctx, "P-1")
	require.NoError(t, err)
	assert.Len(t, movements, 2)
}

func TestMovements_QuantityAndCostSurviveRoundTrip(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	quantity, err := decimal.NewFromString("2.75")
	require.NoError(t, err)
	require.NoError(t, store.AppendMovement(ctx, inventory.Movement{
		ID: "m-1", ProductID: "rope", Type: inventory.MovementPurchase,
		Quantity: quantity, Unit: "kg",
		UnitCost: money.MustParse("3.3333"), TotalCost: money.MustParse("9.17"),
		CreatedBy: "alex", CreatedAt: time.Now().UTC(),
	}))

	movements, err := store.MovementsByProduct(ctx, "rope")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	m := movements[0]
	assert.True(t, m.Quantity.Equal(quantity))
	assert.True(t, m.UnitCost.Equal(money.MustParse("3.3333")))
	assert.True(t, m.TotalCost.Equal(money.MustParse("9.17")))
	assert.Equal(t, "kg", m.Unit)
	assert.Equal(t, "alex", m.CreatedBy)
}

func TestAudit_QueryWithFilters(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	entries := []books.AuditEntry{
		{ID: "a-1", At: base, Action: books.AuditTransferRecorded, AccountID: "bank", Amount: money.FromInt(10)},
		{ID: "a-2", At: base.Add(time.Second), Action: books.AuditInvoicePayment, AccountID: "bank", Amount: money.FromInt(20), Details: map[string]string{"invoice_id": "inv-1"}},
		{ID: "a-3", At: base.Add(2 * time.Second), Action: books.AuditInvoicePayment, AccountID: "safe", Amount: money.FromInt(30)},
	}
	for _, e := range entries {
		require.NoError(t, store.AppendAudit(ctx, e))
	}

	byAction, err := store.QueryAudit(ctx, books.AuditFilter{Action: books.AuditInvoicePayment})
	require.NoError(t, err)
	require.Len(t, byAction, 2)
	assert.Equal(t, "a-3", byAction[0].ID, "newest first")

	byAccount, err := store.QueryAudit(ctx, books.AuditFilter{AccountID: "bank"})
	require.NoError(t, err)
	assert.Len(t, byAccount, 2)

	limited, err := store.QueryAudit(ctx, books.AuditFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "a-3", limited[0].ID)
	assert.Equal(t, "inv-1", byAction[1].Details["invoice_id"])
}

func TestReset_ClearsEverything(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAccount(ctx, ledger.Account{
		ID: "acc-1", Name: "Safe", Kind: ledger.KindPersonal,
		OpeningBalance: money.Zero, Active: true, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.AppendMovement(ctx, inventory.Movement{
		ID: "m-1", ProductID: "oak", Type: inventory.MovementPurchase,
		Quantity: decimal.NewFromInt(1), CreatedAt: time.Now().UTC(),
	}))

	require.NoError(t, store.Reset(ctx))

	accounts, err := store.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
	movements, err := store.AllMovements(ctx)
	require.NoError(t, err)
	assert.Empty(t, movements)
}
