package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/store/memory"
)

func newService() *ledger.Service {
	st := memory.New()
	return ledger.NewService(st, st)
}

func TestService_CreateAccount(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	// WHEN: An account is created
	a, err := svc.CreateAccount(ctx, "Office Safe", ledger.KindPersonal, money.FromInt(500))
	require.NoError(t, err)

	// THEN: It is active, persisted, and carries the opening balance
	assert.NotEmpty(t, a.ID)
	assert.True(t, a.Active)
	assert.True(t, a.OpeningBalance.Equal(money.FromInt(500)))

	stored, err := svc.Accounts.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "Office Safe", stored.Name)
}

func TestService_CreateAccount_RequiresName(t *testing.T) {
	svc := newService()

	_, err := svc.CreateAccount(context.Background(), "", ledger.KindBank, money.Zero)
	assert.ErrorIs(t, err, ledger.ErrAccountRequired)
}

func TestService_SetOpeningBalance_ShiftsDerivedBalance(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	// GIVEN: An account with transfers already recorded against it
	a, err := svc.CreateAccount(ctx, "Safe", ledger.KindPersonal, money.FromInt(100))
	require.NoError(t, err)
	b, err := svc.CreateAccount(ctx, "Bank", ledger.KindBank, money.FromInt(1000))
	require.NoError(t, err)
	_, err = svc.RecordTransfer(ctx, b.ID, a.ID, money.FromInt(50), "", "tester")
	require.NoError(t, err)

	// WHEN: The opening balance is edited after the fact
	_, err = svc.SetOpeningBalance(ctx, a.ID, money.FromInt(400))
	require.NoError(t, err)

	// THEN: The derived balance shifts by the difference; history is untouched
	balances, err := svc.Balances(ctx)
	require.NoError(t, err)
	assert.True(t, balances[a.ID].Equal(money.FromInt(450)), "400 opening + 50 transferred in")

	transfers, err := svc.Transfers.ListTransfers(ctx)
	require.NoError(t, err)
	assert.Len(t, transfers, 1)
}

func TestService_SetOpeningBalance_UnknownAccount(t *testing.T) {
	svc := newService()

	_, err := svc.SetOpeningBalance(context.Background(), "missing", money.FromInt(1))
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.True(t, ledger.IsNotFound(err))
}

func TestService_DeactivateAccount_KeepsHistoryAndBalance(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, "Old Safe", ledger.KindPersonal, money.FromInt(75))
	require.NoError(t, err)

	// WHEN: The account is deactivated
	require.NoError(t, svc.DeactivateAccount(ctx, a.ID))

	// THEN: It still exists, still has a balance, just flagged inactive
	stored, err := svc.Accounts.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.Active)

	balances, err := svc.Balances(ctx)
	require.NoError(t, err)
	assert.True(t, balances[a.ID].Equal(money.FromInt(75)))
}

func TestService_RecordTransfer_Validation(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, "Safe", ledger.KindPersonal, money.Zero)
	require.NoError(t, err)
	b, err := svc.CreateAccount(ctx, "Bank", ledger.KindBank, money.Zero)
	require.NoError(t, err)

	cases := []struct {
		name   string
		from   ledger.AccountID
		to     ledger.AccountID
		amount money.Money
		reason error
	}{
		{"missing source", "", b.ID, money.FromInt(10), ledger.ErrAccountRequired},
		{"missing destination", a.ID, "", money.FromInt(10), ledger.ErrAccountRequired},
		{"same account", a.ID, a.ID, money.FromInt(10), ledger.ErrSameAccount},
		{"zero amount", a.ID, b.ID, money.Zero, ledger.ErrNonPositiveAmount},
		{"negative amount", a.ID, b.ID, money.FromInt(-5), ledger.ErrNonPositiveAmount},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RecordTransfer(ctx, tc.from, tc.to, tc.amount, "", "tester")
			assert.ErrorIs(t, err, tc.reason)
			assert.True(t, ledger.IsClientError(err))
		})
	}
}

func TestService_RecordTransfer_AppendsEvent(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	a, err := svc.CreateAccount(ctx, "Safe", ledger.KindPersonal, money.FromInt(100))
	require.NoError(t, err)
	b, err := svc.CreateAccount(ctx, "Bank", ledger.KindBank, money.FromInt(100))
	require.NoError(t, err)

	tr, err := svc.RecordTransfer(ctx, a.ID, b.ID, money.FromInt(30), "lunch float", "alex")
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, "alex", tr.CreatedBy)

	byAccount, err := svc.Transfers.ListTransfersByAccount(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, byAccount, 1)
	assert.True(t, byAccount[0].Amount.Equal(money.FromInt(30)))
}
