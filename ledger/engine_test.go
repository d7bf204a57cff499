package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
)

func account(id string, opening int64) ledger.Account {
	return ledger.Account{
		ID:             ledger.AccountID(id),
		Name:           id,
		Kind:           ledger.KindPersonal,
		OpeningBalance: money.FromInt(opening),
		Active:         true,
	}
}

func transfer(from, to string, amount int64) ledger.Transfer {
	return ledger.Transfer{
		FromAccountID: ledger.AccountID(from),
		ToAccountID:   ledger.AccountID(to),
		Amount:        money.FromInt(amount),
	}
}

func TestComputeBalances_OpeningOnly(t *testing.T) {
	// GIVEN: Two accounts with opening balances and no transfers
	accounts := []ledger.Account{account("safe", 500), account("bank", 2000)}

	// WHEN: Balances are computed
	balances := ledger.ComputeBalances(accounts, nil)

	// THEN: Each balance equals its opening balance
	assert.True(t, balances["safe"].Equal(money.FromInt(500)))
	assert.True(t, balances["bank"].Equal(money.FromInt(2000)))
}

func TestComputeBalances_TransfersMoveMoneyBothWays(t *testing.T) {
	// GIVEN: Two accounts and transfers in both directions
	accounts := []ledger.Account{account("safe", 500), account("bank", 2000)}
	transfers := []ledger.Transfer{
		transfer("bank", "safe", 300),
		transfer("safe", "bank", 100),
	}

	// WHEN: Balances are computed
	balances := ledger.ComputeBalances(accounts, transfers)

	// THEN: Each side reflects the net movement
	assert.True(t, balances["safe"].Equal(money.FromInt(700)), "500 + 300 - 100")
	assert.True(t, balances["bank"].Equal(money.FromInt(1800)), "2000 - 300 + 100")
}

func TestComputeBalances_TransfersAreZeroSum(t *testing.T) {
	// GIVEN: Accounts and a pile of internal transfers
	accounts := []ledger.Account{account("safe", 500), account("bank", 2000), account("petty", 50)}
	transfers := []ledger.Transfer{
		transfer("bank", "safe", 300),
		transfer("safe", "petty", 120),
		transfer("petty", "bank", 70),
	}

	// WHEN: Balances are computed
	balances := ledger.ComputeBalances(accounts, transfers)

	// THEN: The total is the sum of opening balances, untouched by transfers
	assert.True(t, ledger.TotalBalance(balances).Equal(money.FromInt(2550)))
}

func TestComputeBalances_UnknownAccountsAreIgnored(t *testing.T) {
	// GIVEN: A transfer referencing a deleted/unknown account on one side
	accounts := []ledger.Account{account("safe", 500)}
	transfers := []ledger.Transfer{
		transfer("ghost", "safe", 200), // unknown source
		transfer("safe", "ghost", 50),  // unknown destination
		transfer("ghost", "void", 999), // both unknown
	}

	// WHEN: Balances are computed
	balances := ledger.ComputeBalances(accounts, transfers)

	// THEN: Only the known side is adjusted; both-unknown is a no-op
	assert.True(t, balances["safe"].Equal(money.FromInt(650)), "500 + 200 - 50")
	assert.Len(t, balances, 1, "no phantom accounts appear")
}

func TestComputeBalances_BalancesCanGoNegative(t *testing.T) {
	// GIVEN: A transfer larger than the source's balance
	accounts := []ledger.Account{account("safe", 100), account("bank", 0)}
	transfers := []ledger.Transfer{transfer("safe", "bank", 300)}

	// WHEN: Balances are computed
	balances := ledger.ComputeBalances(accounts, transfers)

	// THEN: The source goes negative; overdrafts are visible, not clamped
	assert.True(t, balances["safe"].Equal(money.FromInt(-200)))
	assert.True(t, balances["bank"].Equal(money.FromInt(300)))
}

func TestApplyEffects_OverlaysSingleSidedFlows(t *testing.T) {
	// GIVEN: Computed balances and invoice/expense style effects
	balances := map[ledger.AccountID]money.Money{
		"safe": money.FromInt(500),
		"bank": money.FromInt(2000),
	}
	effects := []ledger.Effect{
		{AccountID: "bank", Amount: money.FromInt(400), Direction: ledger.EffectInflow},  // collected sale
		{AccountID: "safe", Amount: money.FromInt(150), Direction: ledger.EffectOutflow}, // paid expense
		{AccountID: "ghost", Amount: money.FromInt(999), Direction: ledger.EffectInflow}, // unknown, skipped
	}

	// WHEN: Effects are overlaid
	ledger.ApplyEffects(balances, effects)

	// THEN: Each effect moves exactly one side; unknown accounts are skipped
	assert.True(t, balances["bank"].Equal(money.FromInt(2400)))
	assert.True(t, balances["safe"].Equal(money.FromInt(350)))
	assert.Len(t, balances, 2)
}

func TestComputeBalances_OrderDoesNotMatter(t *testing.T) {
	// GIVEN: The same transfers in two different orders
	accounts := []ledger.Account{account("safe", 500), account("bank", 2000)}
	forward := []ledger.Transfer{
		transfer("bank", "safe", 300),
		transfer("safe", "bank", 100),
		transfer("bank", "safe", 25),
	}
	backward := []ledger.Transfer{forward[2], forward[0], forward[1]}

	// WHEN: Balances are computed from both orders
	a := ledger.ComputeBalances(accounts, forward)
	b := ledger.ComputeBalances(accounts, backward)

	// THEN: The results are identical
	assert.True(t, a["safe"].Equal(b["safe"]))
	assert.True(t, a["bank"].Equal(b["bank"]))
}
