/*
service.go - Validation and persistence around the pure balance engine

PURPOSE:
  The Service is what callers (API, composed workflows) talk to. It
  validates inputs at the call boundary, stamps ids and timestamps, and
  delegates the arithmetic to engine.go.

ERROR POLICY:
  Constraint violations (non-positive amount, same account twice, missing
  account id) are rejected synchronously before any state is touched.
  Dangling references inside historical data are tolerated on read.
*/
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/warp/bookkeeper/money"
)

// Service wires the account and transfer stores to the balance engine.
type Service struct {
	Accounts  AccountStore
	Transfers TransferStore
}

func NewService(accounts AccountStore, transfers TransferStore) *Service {
	return &Service{Accounts: accounts, Transfers: transfers}
}

// CreateAccount registers a new vault.
func (s *Service) CreateAccount(ctx context.Context, name string, kind AccountKind, opening money.Money) (*Account, error) {
	if name == "" {
		return nil, ErrAccountRequired
	}
	a := Account{
		ID:             AccountID(uuid.NewString()),
		Name:           name,
		Kind:           kind,
		OpeningBalance: opening,
		Active:         true,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.Accounts.SaveAccount(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// SetOpeningBalance edits an account's opening balance. Every derived
// balance shifts accordingly on the next read; nothing else is recomputed
// or stored.
func (s *Service) SetOpeningBalance(ctx context.Context, id AccountID, opening money.Money) (*Account, error) {
	a, err := s.Accounts.GetAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAccountNotFound
	}
	a.OpeningBalance = opening
	if err := s.Accounts.SaveAccount(ctx, *a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeactivateAccount flags an account inactive. The account and its history
// remain; balances keep being computed for it.
func (s *Service) DeactivateAccount(ctx context.Context, id AccountID) error {
	a, err := s.Accounts.GetAccount(ctx, id)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAccountNotFound
	}
	a.Active = false
	return s.Accounts.SaveAccount(ctx, *a)
}

// RecordTransfer validates and appends one transfer event.
func (s *Service) RecordTransfer(ctx context.Context, from, to AccountID, amount money.Money, note, createdBy string) (*Transfer, error) {
	if from == "" || to == "" {
		return nil, &TransferValidationError{From: from, To: to, Reason: ErrAccountRequired}
	}
	if from == to {
		return nil, &TransferValidationError{From: from, To: to, Reason: ErrSameAccount}
	}
	if !amount.IsPositive() {
		return nil, &TransferValidationError{From: from, To: to, Reason: ErrNonPositiveAmount}
	}

	t := Transfer{
		ID:            TransferID(uuid.NewString()),
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        amount,
		Note:          note,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Transfers.AppendTransfer(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Balances recomputes every account's transfer-only balance from the full
// history. Invoice/expense effects are overlaid by the composing layer.
func (s *Service) Balances(ctx context.Context) (map[AccountID]money.Money, error) {
	accounts, err := s.Accounts.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	transfers, err := s.Transfers.ListTransfers(ctx)
	if err != nil {
		return nil, err
	}
	return ComputeBalances(accounts, transfers), nil
}
