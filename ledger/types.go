/*
Package ledger provides the vault ledger engine.

PURPOSE:
  Tracks money held in named accounts ("vaults") and the transfers that move
  money between them. The current balance of an account is never stored - it
  is always derived by folding the opening balance with every money-movement
  event that references the account.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: an identified money-holding bucket with an opening balance
  - Transfer: an immutable two-sided money movement between two accounts
  - Effect: a single-sided balance effect (invoice/expense payments)

DESIGN PRINCIPLES:
  1. Derived balances: no stored balance field that can drift out of sync
  2. Immutability: transfers are never edited or deleted once recorded
  3. Tolerance: balance computation ignores references to unknown accounts
     so historical ledgers stay readable after an account is deactivated

SEE ALSO:
  - engine.go: balance computation from accounts + transfers + effects
  - service.go: validation and persistence around the pure engine
*/
package ledger

import (
	"time"

	"github.com/warp/bookkeeper/money"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type AccountID string
type TransferID string

// =============================================================================
// ACCOUNT - Money-holding vault
// =============================================================================

type AccountKind string

const (
	KindPersonal AccountKind = "personal" // cash-like, held by a person
	KindBank     AccountKind = "bank"
)

// Account is a named vault. OpeningBalance is set at creation and may be
// edited by an administrator later, which shifts every derived balance.
// Accounts are never removed, only deactivated.
type Account struct {
	ID             AccountID
	Name           string
	Kind           AccountKind
	OpeningBalance money.Money
	Active         bool
	CreatedAt      time.Time
}

// =============================================================================
// TRANSFER - Atomic movement between exactly two accounts
// =============================================================================

// Transfer moves Amount from FromAccountID to ToAccountID. Immutable once
// created: there is no edit or delete operation, a mistake is corrected by
// recording an opposite transfer.
type Transfer struct {
	ID            TransferID
	FromAccountID AccountID
	ToAccountID   AccountID
	Amount        money.Money // always positive
	Note          string
	CreatedBy     string
	CreatedAt     time.Time
}

// =============================================================================
// EFFECT - Single-sided balance effect
// =============================================================================

// EffectDirection tells whether money enters or leaves the tagged account.
type EffectDirection string

const (
	EffectInflow  EffectDirection = "inflow"  // e.g. collecting from a customer
	EffectOutflow EffectDirection = "outflow" // e.g. paying a supplier or expense
)

// Effect is the balance side-effect of an invoice or expense payment.
// Unlike a Transfer it touches one account only: the other side of the
// movement (a customer's or supplier's obligation) is not itself a
// money-holding account in this system.
type Effect struct {
	AccountID AccountID
	Amount    money.Money
	Direction EffectDirection
}
