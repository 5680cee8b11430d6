package services

import (
	"context"
	"time"

	"moneta/internal/core"
	"moneta/internal/storage"
)

// TransactionService owns the ledger's write path. Every mutation validates
// the entry, checks that the ids it references exist (NotFound before any
// state change), lets the store apply it atomically, and then invalidates
// the memoized historical balances.
type TransactionService struct {
	store    *storage.Store
	accounts *AccountService
	loc      *time.Location
}

func NewTransactionService(store *storage.Store, accounts *AccountService, loc *time.Location) *TransactionService {
	return &TransactionService{store: store, accounts: accounts, loc: loc}
}

func (s *TransactionService) Add(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := s.check(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	recorded, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.accounts.InvalidateBalances()
	return recorded, nil
}

// Update replaces the stored entry wholesale: the store rolls the old effect
// back and applies the new one from scratch instead of diffing the fields.
func (s *TransactionService) Update(ctx context.Context, t core.Transaction) error {
	if err := s.check(ctx, t); err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return err
	}
	s.accounts.InvalidateBalances()
	return nil
}

func (s *TransactionService) Remove(ctx context.Context, id int64) error {
	if err := s.store.RemoveTransaction(ctx, id); err != nil {
		return err
	}
	s.accounts.InvalidateBalances()
	return nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ByMonth returns the entries of one display-location month, newest first.
func (s *TransactionService) ByMonth(ctx context.Context, m core.Month) ([]core.Transaction, error) {
	return s.store.ListByMonth(ctx, m, s.loc)
}

// ByYear returns the entries of one display-location year, newest first.
func (s *TransactionService) ByYear(ctx context.Context, year int) ([]core.Transaction, error) {
	return s.store.ListByYear(ctx, year, s.loc)
}

// All returns the whole log, unordered, for export.
func (s *TransactionService) All(ctx context.Context) ([]core.Transaction, error) {
	return s.store.ListTransactions(ctx)
}

// check runs field validation and then verifies the referenced account and
// category ids exist, so a dangling reference surfaces as NotFound here
// instead of as a ledger inconsistency inside the store.
func (s *TransactionService) check(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetAccount(ctx, t.SourceAccount); err != nil {
		return err
	}
	if t.IsTransfer() {
		_, err := s.store.GetAccount(ctx, t.DestinationAccount)
		return err
	}
	_, err := s.store.GetCategory(ctx, t.Category)
	return err
}
