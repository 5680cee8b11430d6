package services

import (
	"context"
	"fmt"
	"time"

	"moneta/internal/cache"
	"moneta/internal/core"
	"moneta/internal/storage"

	"github.com/shopspring/decimal"
)

// AccountService owns account CRUD and the time-scoped balance resolver.
// Reconstructed historical balances are memoized in an LRU cache that every
// ledger mutation purges.
type AccountService struct {
	store    *storage.Store
	loc      *time.Location
	now      func() time.Time
	balances *cache.LRU[decimal.Decimal]
}

func NewAccountService(store *storage.Store, loc *time.Location, cacheSize int, cacheTTL time.Duration) *AccountService {
	return &AccountService{
		store:    store,
		loc:      loc,
		now:      time.Now,
		balances: cache.New[decimal.Decimal](cacheSize, cacheTTL),
	}
}

// Add validates and persists a new account. The initial balance is accepted
// as given; from then on only the ledger moves it.
func (s *AccountService) Add(ctx context.Context, a core.Account) (core.Account, error) {
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	return s.store.InsertAccount(ctx, a)
}

// Update renames an account or changes its group/goal. Balance edits are not
// representable here.
func (s *AccountService) Update(ctx context.Context, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	return s.store.UpdateAccount(ctx, a)
}

// Remove deletes the account and every transaction referencing it.
func (s *AccountService) Remove(ctx context.Context, id int64) error {
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		return err
	}
	s.InvalidateBalances()
	return nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (core.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) List(ctx context.Context) ([]core.Account, error) {
	return s.store.ListAccounts(ctx)
}

// BalanceAt reconstructs the account's balance as of the end of month m:
// the stored current balance minus the net effect of everything dated on or
// after the first instant of the following month. No balance history is
// stored; the log is the history.
//
// When m is the real current month the stored balance is returned directly —
// nothing can be dated "after this month" yet, so replay would be a no-op.
// A month in the future behaves the same way for the same reason.
func (s *AccountService) BalanceAt(ctx context.Context, id int64, m core.Month) (decimal.Decimal, error) {
	account, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	if m.Equal(core.CurrentMonth(s.now().In(s.loc))) {
		return account.Balance, nil
	}

	key := fmt.Sprintf("%d@%s", id, m)
	if cached, ok := s.balances.Get(key); ok {
		return cached, nil
	}

	_, cutoff := m.RangeIn(s.loc)
	activity, err := s.store.AccountActivitySince(ctx, id, cutoff)
	if err != nil {
		return decimal.Zero, err
	}

	balance := account.Balance
	for _, t := range activity {
		balance = balance.Sub(core.NetEffectOn(t, id))
	}

	s.balances.Set(key, balance)
	return balance, nil
}

// InvalidateBalances drops every memoized historical balance. The category
// and transaction services call this after any mutation of the log.
func (s *AccountService) InvalidateBalances() {
	s.balances.Purge()
}
