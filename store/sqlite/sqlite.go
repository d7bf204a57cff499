/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements persistence for all record kinds (accounts, transfers, invoices,
  expenses, stock movements) plus the audit trail. In production, the same
  patterns apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  ledger.AccountStore:     Vault account records
  ledger.TransferStore:    Append-only transfer events
  payments.InvoiceStore:   Version-checked invoice records
  payments.ExpenseStore:   Version-checked expense records
  inventory.TxMovementStore: Append-only stock movements with transactions
  books.AuditLog:          Append-only audit entries

APPEND-ONLY ENFORCEMENT:
  No UPDATE or DELETE statements exist for transfers, stock movements, or
  audit entries. Corrections are new records.

OPTIMISTIC CONCURRENCY:
  Invoices and expenses carry a version column. Updates run as
  UPDATE ... WHERE id = ? AND version = ? and bump the version. Zero rows
  affected on an existing record means a concurrent writer won; surfaced
  as payments.ErrConflict.

LEGACY EXPENSE SHAPE:
  Expenses store their payment entries as a JSON column. Rows written
  before entries existed carry an empty entries column and only the
  (account_id, paid) pair. Normalization into a one-entry list happens
  right after scanning, so callers never see the legacy shape.

DECIMALS:
  Monetary amounts and quantities are stored as TEXT in decimal string
  form, never as floating point.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/books.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - ledger/store.go, payments/store.go, inventory/store.go: interfaces
  - store/memory: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/inventory"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/money"
	"github.com/warp/bookkeeper/payments"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Vault accounts (mutable: opening balance edits, deactivation)
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		opening_balance TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Transfers (append-only)
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		from_account_id TEXT NOT NULL,
		to_account_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		note TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_from ON transfers(from_account_id);
	CREATE INDEX IF NOT EXISTS idx_transfers_to ON transfers(to_account_id);
	CREATE INDEX IF NOT EXISTS idx_transfers_created ON transfers(created_at);

	-- Invoices (purchase and sales share one shape; versioned)
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		direction TEXT NOT NULL,
		reference TEXT,
		party_name TEXT,
		total TEXT NOT NULL,
		paid TEXT NOT NULL,
		account_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_direction ON invoices(direction);
	CREATE INDEX IF NOT EXISTS idx_invoices_account ON invoices(account_id);

	-- Expenses (versioned; payment entries as JSON)
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		description TEXT,
		expense_type TEXT,
		total TEXT NOT NULL,
		paid TEXT NOT NULL,
		payment_status TEXT NOT NULL,
		payment_entries TEXT,
		account_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_status ON expenses(payment_status);
	CREATE INDEX IF NOT EXISTS idx_expenses_account ON expenses(account_id);

	-- Stock movements (append-only log of quantity events)
	CREATE TABLE IF NOT EXISTS stock_movements (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		movement_type TEXT NOT NULL,
		quantity TEXT NOT NULL,
		unit TEXT,
		unit_cost TEXT,
		total_cost TEXT,
		invoice_ref TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_movements_product ON stock_movements(product_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_movements_invoice ON stock_movements(invoice_ref);
	CREATE INDEX IF NOT EXISTS idx_movements_type ON stock_movements(movement_type);

	-- Audit trail (append-only)
	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		actor_id TEXT,
		action TEXT NOT NULL,
		reference TEXT,
		account_id TEXT,
		amount TEXT,
		details_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_account ON audit_log(account_id);
	CREATE INDEX IF NOT EXISTS idx_audit_at ON audit_log(at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ACCOUNT STORE (ledger.AccountStore)
// =============================================================================

// SaveAccount inserts or updates an account.
func (s *Store) SaveAccount(ctx context.Context, a ledger.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO accounts (id, name, kind, opening_balance, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			opening_balance = excluded.opening_balance,
			active = excluded.active
	`
	_, err := s.db.ExecContext(ctx, query,
		a.ID, a.Name, a.Kind,
		a.OpeningBalance.String(),
		a.Active,
		a.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by id. Returns nil when not found.
func (s *Store) GetAccount(ctx context.Context, id ledger.AccountID) (*ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		a         ledger.Account
		opening   string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, kind, opening_balance, active, created_at FROM accounts WHERE id = ?",
		id,
	).Scan(&a.ID, &a.Name, &a.Kind, &opening, &a.Active, &createdAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.OpeningBalance = money.MustParse(opening)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &a, nil
}

// ListAccounts returns all accounts ordered by name.
func (s *Store) ListAccounts(ctx context.Context) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, kind, opening_balance, active, created_at FROM accounts ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []ledger.Account
	for rows.Next() {
		var (
			a         ledger.Account
			opening   string
			createdAt string
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Kind, &opening, &a.Active, &createdAt); err != nil {
			return nil, err
		}
		a.OpeningBalance = money.MustParse(opening)
		a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// =============================================================================
// TRANSFER STORE (ledger.TransferStore)
// =============================================================================

// AppendTransfer records a transfer. Append-only.
func (s *Store) AppendTransfer(ctx context.Context, t ledger.Transfer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transfers (id, from_account_id, to_account_id, amount, note, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		t.ID, t.FromAccountID, t.ToAccountID,
		t.Amount.String(),
		nullString(t.Note), nullString(t.CreatedBy),
		t.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append transfer: %w", err)
	}
	return nil
}

// ListTransfers returns all transfers, oldest first.
func (s *Store) ListTransfers(ctx context.Context) ([]ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransfers(ctx, `
		SELECT id, from_account_id, to_account_id, amount, note, created_by, created_at
		FROM transfers
		ORDER BY created_at ASC, id ASC
	`)
}

// ListTransfersByAccount returns transfers touching the account, oldest first.
func (s *Store) ListTransfersByAccount(ctx context.Context, id ledger.AccountID) ([]ledger.Transfer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryTransfers(ctx, `
		SELECT id, from_account_id, to_account_id, amount, note, created_by, created_at
		FROM transfers
		WHERE from_account_id = ? OR to_account_id = ?
		ORDER BY created_at ASC, id ASC
	`, id, id)
}

func (s *Store) queryTransfers(ctx context.Context, query string, args ...any) ([]ledger.Transfer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []ledger.Transfer
	for rows.Next() {
		var (
			t         ledger.Transfer
			amount    string
			note      sql.NullString
			createdBy sql.NullString
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.FromAccountID, &t.ToAccountID, &amount, &note, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		t.Amount = money.MustParse(amount)
		t.Note = note.String
		t.CreatedBy = createdBy.String
		t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

// =============================================================================
// INVOICE STORE (payments.InvoiceStore)
// =============================================================================

// InsertInvoice stores a new invoice at version 1.
func (s *Store) InsertInvoice(ctx context.Context, inv payments.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO invoices (id, direction, reference, party_name, total, paid, account_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		inv.ID, inv.Direction,
		nullString(inv.Reference), nullString(inv.PartyName),
		inv.Total.String(), inv.Paid.String(),
		nullString(string(inv.AccountID)),
		inv.CreatedAt.Format(time.RFC3339), inv.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// UpdateInvoice applies a versioned update. Returns payments.ErrConflict
// when a concurrent writer got there first.
func (s *Store) UpdateInvoice(ctx context.Context, inv payments.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		UPDATE invoices
		SET paid = ?, account_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		inv.Paid.String(),
		nullString(string(inv.AccountID)),
		inv.UpdatedAt.Format(time.RFC3339),
		inv.ID, inv.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOrConflict(ctx, "invoices", string(inv.ID), payments.ErrInvoiceNotFound)
	}
	return nil
}

// GetInvoice retrieves an invoice by id. Returns nil when not found.
func (s *Store) GetInvoice(ctx context.Context, id payments.InvoiceID) (*payments.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoices, err := s.queryInvoices(ctx, `
		SELECT id, direction, reference, party_name, total, paid, account_id, version, created_at, updated_at
		FROM invoices WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(invoices) == 0 {
		return nil, nil
	}
	return &invoices[0], nil
}

// ListInvoices returns invoices, optionally filtered by direction,
// newest first.
func (s *Store) ListInvoices(ctx context.Context, direction payments.Direction) ([]payments.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if direction == "" {
		return s.queryInvoices(ctx, `
			SELECT id, direction, reference, party_name, total, paid, account_id, version, created_at, updated_at
			FROM invoices ORDER BY created_at DESC, id ASC
		`)
	}
	return s.queryInvoices(ctx, `
		SELECT id, direction, reference, party_name, total, paid, account_id, version, created_at, updated_at
		FROM invoices WHERE direction = ? ORDER BY created_at DESC, id ASC
	`, direction)
}

func (s *Store) queryInvoices(ctx context.Context, query string, args ...any) ([]payments.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var invoices []payments.Invoice
	for rows.Next() {
		var (
			inv       payments.Invoice
			reference sql.NullString
			party     sql.NullString
			total     string
			paid      string
			accountID sql.NullString
			createdAt string
			updatedAt string
		)
		if err := rows.Scan(&inv.ID, &inv.Direction, &reference, &party, &total, &paid,
			&accountID, &inv.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		inv.Reference = reference.String
		inv.PartyName = party.String
		inv.Total = money.MustParse(total)
		inv.Paid = money.MustParse(paid)
		inv.AccountID = ledger.AccountID(accountID.String)
		inv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		inv.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

// =============================================================================
// EXPENSE STORE (payments.ExpenseStore)
// =============================================================================

// paymentEntryRow is the JSON shape of one stored payment entry.
type paymentEntryRow struct {
	AccountID string `json:"account_id"`
	Amount    string `json:"amount"`
	PaidAt    string `json:"paid_at"`
}

func marshalEntries(entries []payments.PaymentEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}
	out := make([]paymentEntryRow, len(entries))
	for i, e := range entries {
		out[i] = paymentEntryRow{
			AccountID: string(e.AccountID),
			Amount:    e.Amount.String(),
			PaidAt:    e.PaidAt.Format(time.RFC3339),
		}
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalEntries(raw string) ([]payments.PaymentEntry, error) {
	if raw == "" {
		return nil, nil
	}
	var in []paymentEntryRow
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, fmt.Errorf("failed to decode payment entries: %w", err)
	}
	entries := make([]payments.PaymentEntry, len(in))
	for i, r := range in {
		paidAt, _ := time.Parse(time.RFC3339, r.PaidAt)
		entries[i] = payments.PaymentEntry{
			AccountID: ledger.AccountID(r.AccountID),
			Amount:    money.MustParse(r.Amount),
			PaidAt:    paidAt,
		}
	}
	return entries, nil
}

// InsertExpense stores a new expense at version 1.
func (s *Store) InsertExpense(ctx context.Context, exp payments.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entriesJSON, err := marshalEntries(exp.Entries)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO expenses (id, description, expense_type, total, paid, payment_status, payment_entries, account_id, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		exp.ID,
		nullString(exp.Description), nullString(exp.ExpenseType),
		exp.Total.String(), exp.Paid.String(),
		exp.PaymentStatus,
		nullString(entriesJSON),
		nullString(string(exp.AccountID)),
		exp.CreatedAt.Format(time.RFC3339), exp.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// UpdateExpense applies a versioned update. Returns payments.ErrConflict
// when a concurrent writer got there first.
func (s *Store) UpdateExpense(ctx context.Context, exp payments.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entriesJSON, err := marshalEntries(exp.Entries)
	if err != nil {
		return err
	}

	query := `
		UPDATE expenses
		SET paid = ?, payment_status = ?, payment_entries = ?, account_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		exp.Paid.String(), exp.PaymentStatus,
		nullString(entriesJSON),
		nullString(string(exp.AccountID)),
		exp.UpdatedAt.Format(time.RFC3339),
		exp.ID, exp.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return s.missingOrConflict(ctx, "expenses", string(exp.ID), payments.ErrExpenseNotFound)
	}
	return nil
}

// GetExpense retrieves an expense by id, normalized into entry-list form.
// Returns nil when not found.
func (s *Store) GetExpense(ctx context.Context, id payments.ExpenseID) (*payments.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses, err := s.queryExpenses(ctx, `
		SELECT id, description, expense_type, total, paid, payment_status, payment_entries, account_id, version, created_at, updated_at
		FROM expenses WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	if len(expenses) == 0 {
		return nil, nil
	}
	return &expenses[0], nil
}

// ListExpenses returns all expenses, normalized, newest first.
func (s *Store) ListExpenses(ctx context.Context) ([]payments.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryExpenses(ctx, `
		SELECT id, description, expense_type, total, paid, payment_status, payment_entries, account_id, version, created_at, updated_at
		FROM expenses ORDER BY created_at DESC, id ASC
	`)
}

func (s *Store) queryExpenses(ctx context.Context, query string, args ...any) ([]payments.Expense, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []payments.Expense
	for rows.Next() {
		var (
			exp         payments.Expense
			description sql.NullString
			expenseType sql.NullString
			total       string
			paid        string
			entriesJSON sql.NullString
			accountID   sql.NullString
			createdAt   string
			updatedAt   string
		)
		if err := rows.Scan(&exp.ID, &description, &expenseType, &total, &paid,
			&exp.PaymentStatus, &entriesJSON, &accountID, &exp.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		exp.Description = description.String
		exp.ExpenseType = expenseType.String
		exp.Total = money.MustParse(total)
		exp.Paid = money.MustParse(paid)
		exp.Entries, err = unmarshalEntries(entriesJSON.String)
		if err != nil {
			return nil, err
		}
		exp.AccountID = ledger.AccountID(accountID.String)
		exp.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		exp.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		// Legacy rows: single (account, paid) pair, no entries column.
		exp.Normalize()

		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

// =============================================================================
// MOVEMENT STORE (inventory.TxMovementStore)
// =============================================================================

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendMovement records a stock movement. Append-only.
func (s *Store) AppendMovement(ctx context.Context, m inventory.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendMovement(ctx, s.db, m)
}

func appendMovement(ctx context.Context, db execer, m inventory.Movement) error {
	query := `
		INSERT INTO stock_movements (id, product_id, movement_type, quantity, unit, unit_cost, total_cost, invoice_ref, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(ctx, query,
		m.ID, m.ProductID, m.Type,
		m.Quantity.String(),
		nullString(m.Unit),
		nullMoney(m.UnitCost), nullMoney(m.TotalCost),
		nullString(m.InvoiceRef), nullString(m.CreatedBy),
		m.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}
	return nil
}

const movementColumns = `id, product_id, movement_type, quantity, unit, unit_cost, total_cost, invoice_ref, created_by, created_at`

// MovementsByProduct returns the product's movements, oldest first.
func (s *Store) MovementsByProduct(ctx context.Context, id inventory.ProductID) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMovements(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE product_id = ?
		ORDER BY created_at ASC, id ASC
	`, id)
}

// MovementsByInvoice returns movements caused by an invoice reference.
func (s *Store) MovementsByInvoice(ctx context.Context, invoiceRef string) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMovements(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		WHERE invoice_ref = ?
		ORDER BY created_at ASC, id ASC
	`, invoiceRef)
}

// AllMovements returns the full movement log, oldest first.
func (s *Store) AllMovements(ctx context.Context) ([]inventory.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryMovements(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements
		ORDER BY created_at ASC, id ASC
	`)
}

func (s *Store) queryMovements(ctx context.Context, query string, args ...any) ([]inventory.Movement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query movements: %w", err)
	}
	defer rows.Close()

	var movements []inventory.Movement
	for rows.Next() {
		var (
			m          inventory.Movement
			quantity   string
			unit       sql.NullString
			unitCost   sql.NullString
			totalCost  sql.NullString
			invoiceRef sql.NullString
			createdBy  sql.NullString
			createdAt  string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &quantity, &unit,
			&unitCost, &totalCost, &invoiceRef, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		m.Quantity = mustDecimal(quantity)
		m.Unit = unit.String
		m.UnitCost = parseMoney(unitCost)
		m.TotalCost = parseMoney(totalCost)
		m.InvoiceRef = invoiceRef.String
		m.CreatedBy = createdBy.String
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// WithTx executes fn within a database transaction. Movement appends made
// through the passed store commit together or not at all.
func (s *Store) WithTx(ctx context.Context, fn func(inventory.MovementStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txMovementStore{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txMovementStore scopes movement writes to one transaction. Reads go to
// the parent connection, outside the pending transaction.
type txMovementStore struct {
	tx     *sql.Tx
	parent *Store
}

func (t *txMovementStore) AppendMovement(ctx context.Context, m inventory.Movement) error {
	return appendMovement(ctx, t.tx, m)
}

func (t *txMovementStore) MovementsByProduct(ctx context.Context, id inventory.ProductID) ([]inventory.Movement, error) {
	return t.parent.queryMovements(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements WHERE product_id = ? ORDER BY created_at ASC, id ASC
	`, id)
}

func (t *txMovementStore) MovementsByInvoice(ctx context.Context, invoiceRef string) ([]inventory.Movement, error) {
	return t.parent.queryMovements(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements WHERE invoice_ref = ? ORDER BY created_at ASC, id ASC
	`, invoiceRef)
}

func (t *txMovementStore) AllMovements(ctx context.Context) ([]inventory.Movement, error) {
	return t.parent.queryMovements(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movements ORDER BY created_at ASC, id ASC
	`)
}

// =============================================================================
// AUDIT LOG (books.AuditLog)
// =============================================================================

// AppendAudit records one audit entry. Append-only.
func (s *Store) AppendAudit(ctx context.Context, entry books.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	detailsJSON := ""
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		detailsJSON = string(b)
	}

	query := `
		INSERT INTO audit_log (id, at, actor_id, action, reference, account_id, amount, details_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.At.Format(time.RFC3339),
		nullString(entry.ActorID),
		entry.Action,
		nullString(entry.Reference),
		nullString(string(entry.AccountID)),
		entry.Amount.String(),
		nullString(detailsJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// QueryAudit returns audit entries matching the filter, newest first.
func (s *Store) QueryAudit(ctx context.Context, filter books.AuditFilter) ([]books.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		clauses []string
		args    []any
	)
	if filter.Action != "" {
		clauses = append(clauses, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.AccountID != "" {
		clauses = append(clauses, "account_id = ?")
		args = append(args, filter.AccountID)
	}

	query := "SELECT id, at, actor_id, action, reference, account_id, amount, details_json FROM audit_log"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY at DESC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []books.AuditEntry
	for rows.Next() {
		var (
			e         books.AuditEntry
			at        string
			actorID   sql.NullString
			reference sql.NullString
			accountID sql.NullString
			amount    sql.NullString
			details   sql.NullString
		)
		if err := rows.Scan(&e.ID, &at, &actorID, &e.Action, &reference, &accountID, &amount, &details); err != nil {
			return nil, err
		}
		e.At, _ = time.Parse(time.RFC3339, at)
		e.ActorID = actorID.String
		e.Reference = reference.String
		e.AccountID = ledger.AccountID(accountID.String)
		e.Amount = parseMoney(amount)
		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
				return nil, fmt.Errorf("failed to decode audit details: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data. For tests and demo seeding only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"audit_log", "stock_movements", "expenses", "invoices", "transfers", "accounts"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// missingOrConflict distinguishes a vanished record from a version race
// after a zero-row versioned update.
func (s *Store) missingOrConflict(ctx context.Context, table, id string, notFound error) error {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table+" WHERE id = ?", id).Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return notFound
	}
	return payments.ErrConflict
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullMoney(m money.Money) sql.NullString {
	if m.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: m.String(), Valid: true}
}

func parseMoney(ns sql.NullString) money.Money {
	if !ns.Valid || ns.String == "" {
		return money.Zero
	}
	return money.MustParse(ns.String)
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
