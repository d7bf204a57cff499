/*
store.go - Persistence interfaces for accounts and transfers

PURPOSE:
  The boundary between the ledger engine and the database. Accounts are
  mutable records (opening balance edits, deactivation). Transfers are
  append-only: the interface deliberately has no update or delete for them.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite store
  - store/memory: in-memory store for tests and dev
*/
package ledger

import "context"

// AccountStore persists vault accounts.
type AccountStore interface {
	// SaveAccount inserts or updates an account record.
	SaveAccount(ctx context.Context, a Account) error

	// GetAccount returns the account or nil if it does not exist.
	GetAccount(ctx context.Context, id AccountID) (*Account, error)

	// ListAccounts returns every account, active or not.
	ListAccounts(ctx context.Context) ([]Account, error)
}

// TransferStore persists transfer events.
// APPEND-ONLY: no update, no delete. A wrong transfer is corrected by
// recording an opposite one.
type TransferStore interface {
	// AppendTransfer records one transfer. The only write operation.
	AppendTransfer(ctx context.Context, t Transfer) error

	// ListTransfers returns all transfers, oldest first.
	ListTransfers(ctx context.Context) ([]Transfer, error)

	// ListTransfersByAccount returns transfers touching the account on
	// either side, oldest first.
	ListTransfersByAccount(ctx context.Context, id AccountID) ([]Transfer, error)
}
