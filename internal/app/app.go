// Package app holds the month cursor and the realized entity lists a
// frontend binds to. One App is constructed at startup and passed to every
// consumer; there is no package-level singleton.
package app

import (
	"context"
	"fmt"
	"time"

	"moneta/internal/core"
	"moneta/internal/services"

	"golang.org/x/sync/errgroup"
)

// App scopes every query against its current month cursor. It is not safe
// for concurrent use; like the ledger itself it expects a single logical
// thread of control.
type App struct {
	accounts     *services.AccountService
	categories   *services.CategoryService
	transactions *services.TransactionService
	loc          *time.Location
	now          func() time.Time

	cursor            core.Month
	accountList       []core.Account
	incomeCategories  []core.Category
	expenseCategories []core.Category
	transactionList   []core.Transaction
}

// New builds the context scoped to the real current month and performs the
// initial load.
func New(ctx context.Context, accounts *services.AccountService, categories *services.CategoryService, transactions *services.TransactionService, loc *time.Location) (*App, error) {
	a := &App{
		accounts:     accounts,
		categories:   categories,
		transactions: transactions,
		loc:          loc,
		now:          time.Now,
	}
	a.cursor = core.CurrentMonth(a.now().In(loc))
	if err := a.Reload(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Reload refreshes every realized list for the current cursor scope. The
// four loads are independent reads, so they run concurrently.
func (a *App) Reload(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var (
		accountList     []core.Account
		income, expense []core.Category
		transactionList []core.Transaction
	)
	g.Go(func() error {
		var err error
		accountList, err = a.accounts.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = a.categories.ListIncome(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		expense, err = a.categories.ListExpense(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		transactionList, err = a.transactions.ByMonth(ctx, a.cursor)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("reload app context: %w", err)
	}

	a.accountList = accountList
	a.incomeCategories = income
	a.expenseCategories = expense
	a.transactionList = transactionList
	return nil
}

// Cursor returns the currently viewed month.
func (a *App) Cursor() core.Month {
	return a.cursor
}

// Previous moves the cursor one month back, rolling over the year at
// January, and reloads the transaction list for the new scope.
func (a *App) Previous(ctx context.Context) error {
	a.cursor = a.cursor.Prev()
	return a.reloadTransactions(ctx)
}

// Next moves the cursor one month forward, rolling over the year at
// December, and reloads the transaction list for the new scope. Gating Next
// behind IsAtLatest is the caller's choice; the cursor itself accepts any
// month.
func (a *App) Next(ctx context.Context) error {
	a.cursor = a.cursor.Next()
	return a.reloadTransactions(ctx)
}

// IsAtLatest reports whether the cursor sits on the real current month.
// "Real" is read fresh on every call, so the answer can flip at a month
// boundary during a long session; it gates navigation and edit affordances,
// nothing correctness-critical.
func (a *App) IsAtLatest() bool {
	return a.cursor.Equal(core.CurrentMonth(a.now().In(a.loc)))
}

func (a *App) reloadTransactions(ctx context.Context) error {
	transactionList, err := a.transactions.ByMonth(ctx, a.cursor)
	if err != nil {
		return fmt.Errorf("reload transactions: %w", err)
	}
	a.transactionList = transactionList
	return nil
}

// Accounts returns the realized account list.
func (a *App) Accounts() []core.Account {
	return a.accountList
}

// IncomeCategories returns the realized income category list.
func (a *App) IncomeCategories() []core.Category {
	return a.incomeCategories
}

// ExpenseCategories returns the realized expense category list.
func (a *App) ExpenseCategories() []core.Category {
	return a.expenseCategories
}

// Transactions returns the realized transaction list for the cursor month,
// newest first.
func (a *App) Transactions() []core.Transaction {
	return a.transactionList
}
