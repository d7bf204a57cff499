/*
engine.go - Balance computation

PURPOSE:
  Pure functions that derive account balances from the event history.
  No hidden state: given the same accounts, transfers, and effects, the
  same balances come out.

ALGORITHM:
  1. Seed every known account's running balance with its opening balance.
  2. Fold over transfers: subtract from the source, add to the destination.
     Addition is commutative so transfer order does not matter.
  3. Optionally overlay single-sided effects (invoice/expense payments).

INVARIANTS:
  - Transfers are zero-sum: the total across all balances is unchanged by
    any transfer between two known accounts.
  - Effects change the total by exactly their signed amount.
  - A transfer or effect referencing an unknown account adjusts only the
    known side; both-unknown movements are ignored entirely. Unknown
    references are not an error.
*/
package ledger

import "github.com/warp/bookkeeper/money"

// ComputeBalances derives the current balance of every known account from
// opening balances plus the full transfer history.
func ComputeBalances(accounts []Account, transfers []Transfer) map[AccountID]money.Money {
	balances := make(map[AccountID]money.Money, len(accounts))
	for _, a := range accounts {
		balances[a.ID] = a.OpeningBalance
	}

	for _, t := range transfers {
		if from, ok := balances[t.FromAccountID]; ok {
			balances[t.FromAccountID] = from.Sub(t.Amount)
		}
		if to, ok := balances[t.ToAccountID]; ok {
			balances[t.ToAccountID] = to.Add(t.Amount)
		}
	}

	return balances
}

// ApplyEffects overlays single-sided payment effects onto a balance map
// produced by ComputeBalances. Effects tagged with an unknown account are
// skipped. The map is mutated in place and returned for convenience.
func ApplyEffects(balances map[AccountID]money.Money, effects []Effect) map[AccountID]money.Money {
	for _, e := range effects {
		current, ok := balances[e.AccountID]
		if !ok {
			continue
		}
		switch e.Direction {
		case EffectInflow:
			balances[e.AccountID] = current.Add(e.Amount)
		case EffectOutflow:
			balances[e.AccountID] = current.Sub(e.Amount)
		}
	}
	return balances
}

// TotalBalance sums every balance in the map. Used to check the zero-sum
// transfer invariant and for net-worth style reporting.
func TotalBalance(balances map[AccountID]money.Money) money.Money {
	total := money.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	return total
}
