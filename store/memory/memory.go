// Package memory provides in-memory implementations of the storage
// interfaces, for testing and development. Semantics mirror store/sqlite:
// versioned updates on invoices and expenses, append-only transfers,
// movements and audit entries, and expenses normalized on every read.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/payments"
)

// Store implements all storage interfaces in memory.
type Store struct {
	mu        sync.RWMutex
	accounts  map[ledger.AccountID]ledger.Account
	transfers []ledger.Transfer
	invoices  map[payments.InvoiceID]payments.Invoice
	expenses  map[payments.ExpenseID]payments.Expense
	movements []inventory.Movement
	audits    []books.AuditEntry
}

func New() *Store {
	return &Store{
		accounts: make(map[ledger.AccountID]ledger.Account),
		invoices: make(map[payments.InvoiceID]payments.Invoice),
		expenses: make(map[payments.ExpenseID]payments.Expense),
	}
}

// Reset drops everything. Mirrors the sqlite store's Reset, used by the
// development reset endpoint and by tests.
func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = make(map[ledger.AccountID]ledger.Account)
	s.transfers = nil
	s.invoices = make(map[payments.InvoiceID]payments.Invoice)
	s.expenses = make(map[payments.ExpenseID]payments.Expense)
	s.movements = nil
	s.audits = nil
	return nil
}

// =============================================================================
// ACCOUNT STORE (ledger.AccountStore)
// =============================================================================

func (s *Store) SaveAccount(_ context.Context, a ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
	return nil
}

func (s *Store) GetAccount(_ context.Context, id ledger.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *Store) ListAccounts(_ context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accounts := make([]ledger.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Name < accounts[j].Name })
	return accounts, nil
}

// =============================================================================
// TRANSFER STORE (ledger.TransferStore)
// =============================================================================

func (s *Store) AppendTransfer(_ context.Context, t ledger.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transfers = append(s.transfers, t)
	return nil
}

func (s *Store) ListTransfers(_ context.Context) ([]ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]ledger.Transfer, len(s.transfers))
	copy(result, s.transfers)
	return result, nil
}

func (s *Store) ListTransfersByAccount(_ context.Context, id ledger.AccountID) ([]ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []ledger.Transfer
	for _, t := range s.transfers {
		if t.FromAccountID == id || t.ToAccountID == id {
			result = append(result, t)
		}
	}
	return result, nil
}

// =============================================================================
// INVOICE STORE (payments.InvoiceStore)
// =============================================================================

func (s *Store) InsertInvoice(_ context.Context, inv payments.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.Version = 1
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) UpdateInvoice(_ context.Context, inv payments.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.invoices[inv.ID]
	if !ok {
		return payments.ErrInvoiceNotFound
	}
	if stored.Version != inv.Version {
		return payments.ErrConflict
	}
	inv.Version++
	s.invoices[inv.ID] = inv
	return nil
}

func (s *Store) GetInvoice(_ context.Context, id payments.InvoiceID) (*payments.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (s *Store) ListInvoices(_ context.Context, direction payments.Direction) ([]payments.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoices := make([]payments.Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if direction != "" && inv.Direction != direction {
			continue
		}
		invoices = append(invoices, inv)
	}
	sort.Slice(invoices, func(i, j int) bool {
		return invoices[i].CreatedAt.After(invoices[j].CreatedAt)
	})
	return invoices, nil
}

// =============================================================================
// EXPENSE STORE (payments.ExpenseStore)
// =============================================================================

func (s *Store) InsertExpense(_ context.Context, exp payments.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp.Version = 1
	s.expenses[exp.ID] = copyExpense(exp)
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, exp payments.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.expenses[exp.ID]
	if !ok {
		return payments.ErrExpenseNotFound
	}
	if stored.Version != exp.Version {
		return payments.ErrConflict
	}
	exp.Version++
	s.expenses[exp.ID] = copyExpense(exp)
	return nil
}

func (s *Store) GetExpense(_ context.Context, id payments.ExpenseID) (*payments.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.expenses[id]
	if !ok {
		return nil, nil
	}
	out := copyExpense(exp)
	out.Normalize()
	return &out, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]payments.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	expenses := make([]payments.Expense, 0, len(s.expenses))
	for _, exp := range s.expenses {
		out := copyExpense(exp)
		out.Normalize()
		expenses = append(expenses, out)
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].CreatedAt.After(expenses[j].CreatedAt)
	})
	return expenses, nil
}

// copyExpense clones the entries slice so callers never alias stored state.
func copyExpense(exp payments.Expense) payments.Expense {
	if exp.Entries != nil {
		entries := make([]payments.PaymentEntry, len(exp.Entries))
		copy(entries, exp.Entries)
		exp.Entries = entries
	}
	return exp
}

// =============================================================================
// MOVEMENT STORE (inventory.TxMovementStore)
// =============================================================================

func (s *Store) AppendMovement(_ context.Context, m inventory.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, m)
	return nil
}

func (s *Store) MovementsByProduct(_ context.Context, id inventory.ProductID) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterMovements(func(m inventory.Movement) bool { return m.ProductID == id }), nil
}

func (s *Store) MovementsByInvoice(_ context.Context, invoiceRef string) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterMovements(func(m inventory.Movement) bool { return m.InvoiceRef == invoiceRef }), nil
}

func (s *Store) AllMovements(_ context.Context) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]inventory.Movement, len(s.movements))
	copy(result, s.movements)
	return result, nil
}

func (s *Store) filterMovements(match func(inventory.Movement) bool) []inventory.Movement {
	var result []inventory.Movement
	for _, m := range s.movements {
		if match(m) {
			result = append(result, m)
		}
	}
	return result
}

// WithTx executes fn within a transaction.
// For the memory store this is simulated with a snapshot + rollback on error.
func (s *Store) WithTx(_ context.Context, fn func(inventory.MovementStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]inventory.Movement, len(s.movements))
	copy(snapshot, s.movements)

	if err := fn(&txMovementView{parent: s}); err != nil {
		s.movements = snapshot
		return err
	}
	return nil
}

// txMovementView writes directly to the parent without re-locking; the
// parent holds the lock for the duration of WithTx.
type txMovementView struct {
	parent *Store
}

func (v *txMovementView) AppendMovement(_ context.Context, m inventory.Movement) error {
	v.parent.movements = append(v.parent.movements, m)
	return nil
}

func (v *txMovementView) MovementsByProduct(_ context.Context, id inventory.ProductID) ([]inventory.Movement, error) {
	return v.parent.filterMovements(func(m inventory.Movement) bool { return m.ProductID == id }), nil
}

func (v *txMovementView) MovementsByInvoice(_ context.Context, invoiceRef string) ([]inventory.Movement, error) {
	return v.parent.filterMovements(func(m inventory.Movement) bool { return m.InvoiceRef == invoiceRef }), nil
}

func (v *txMovementView) AllMovements(_ context.Context) ([]inventory.Movement, error) {
	result := make([]inventory.Movement, len(v.parent.movements))
	copy(result, v.parent.movements)
	return result, nil
}

// =============================================================================
// AUDIT LOG (books.AuditLog)
// =============================================================================

func (s *Store) AppendAudit(_ context.Context, entry books.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, entry)
	return nil
}

func (s *Store) QueryAudit(_ context.Context, filter books.AuditFilter) ([]books.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []books.AuditEntry
	for i := len(s.audits) - 1; i >= 0; i-- {
		e := s.audits[i]
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.AccountID != "" && e.AccountID != filter.AccountID {
			continue
		}
		result = append(result, e)
		if filter.Limit > 0 && len(result) >= filter.Limit {
			break
		}
	}
	return result, nil
}
