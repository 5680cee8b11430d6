package services

import (
	"context"
	"testing"
	"time"

	"moneta/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTransactionRejectsInvalidInput(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()

	wallet := f.account(t, "Wallet", "100")
	food := f.expenseCategory(t, "Food")
	when := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "-5"),
		SourceAccount: wallet.ID, Category: food.ID, Type: core.TypeExpense,
	})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)

	_, err = f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "5"),
		Category: food.ID, Type: core.TypeExpense,
	})
	assert.ErrorIs(t, err, core.ErrMissingSource)

	_, err = f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "5"),
		SourceAccount: wallet.ID, Type: core.TypeTransfer,
	})
	assert.ErrorIs(t, err, core.ErrMissingDestination)

	// Nothing was written and no balance moved.
	balance, err := f.accounts.Get(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(requireDec(t, "100")))

	all, err := f.transactions.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAddTransactionRejectsDanglingReferences(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()

	wallet := f.account(t, "Wallet", "100")
	food := f.expenseCategory(t, "Food")
	when := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	_, err := f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "5"),
		SourceAccount: 999, Category: food.ID, Type: core.TypeExpense,
	})
	assert.True(t, core.IsNotFound(err))

	_, err = f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "5"),
		SourceAccount: wallet.ID, Category: 999, Type: core.TypeExpense,
	})
	assert.True(t, core.IsNotFound(err))

	_, err = f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "5"),
		SourceAccount: wallet.ID, DestinationAccount: 999, Type: core.TypeTransfer,
	})
	assert.True(t, core.IsNotFound(err))
}

func TestUpdateMatchesRemoveThenAdd(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()

	wallet := f.account(t, "Wallet", "1000")
	food := f.expenseCategory(t, "Food")
	when := time.Date(2025, 6, 3, 18, 0, 0, 0, time.UTC)

	recorded, err := f.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "120"),
		SourceAccount: wallet.ID, Category: food.ID, Type: core.TypeExpense,
	})
	require.NoError(t, err)

	edited := recorded
	edited.Amount = requireDec(t, "80")
	require.NoError(t, f.transactions.Update(ctx, edited))

	account, err := f.accounts.Get(ctx, wallet.ID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(requireDec(t, "920")))

	// Equivalent sequence on a fresh ledger: remove then add.
	g := newLedger(t)
	wallet2 := g.account(t, "Wallet", "1000")
	food2 := g.expenseCategory(t, "Food")
	first, err := g.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "120"),
		SourceAccount: wallet2.ID, Category: food2.ID, Type: core.TypeExpense,
	})
	require.NoError(t, err)
	require.NoError(t, g.transactions.Remove(ctx, first.ID))
	_, err = g.transactions.Add(ctx, core.Transaction{
		DateTime: when, Amount: requireDec(t, "80"),
		SourceAccount: wallet2.ID, Category: food2.ID, Type: core.TypeExpense,
	})
	require.NoError(t, err)

	account2, err := g.accounts.Get(ctx, wallet2.ID)
	require.NoError(t, err)
	assert.True(t, account2.Balance.Equal(account.Balance))
}

func TestByMonthUsesDisplayLocation(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()

	wallet := f.account(t, "Wallet", "0")
	food := f.expenseCategory(t, "Food")

	_, err := f.transactions.Add(ctx, core.Transaction{
		DateTime:      time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC),
		Amount:        requireDec(t, "9.99"),
		SourceAccount: wallet.ID, Category: food.ID, Type: core.TypeExpense,
	})
	require.NoError(t, err)

	june, err := f.transactions.ByMonth(ctx, core.Month{Year: 2025, Month: time.June})
	require.NoError(t, err)
	assert.Len(t, june, 1)

	may, err := f.transactions.ByMonth(ctx, core.Month{Year: 2025, Month: time.May})
	require.NoError(t, err)
	assert.Empty(t, may)
}

func TestCategoryRemoveCascadesThroughService(t *testing.T) {
	f := newLedger(t)
	ctx := context.Background()

	wallet := f.account(t, "Wallet", "100")
	food := f.expenseCategory(t, "Food")

	_, err := f.transactions.Add(ctx, core.Transaction{
		DateTime:      time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC),
		Amount:        requireDec(t, "10"),
		SourceAccount: wallet.ID, Category: food.ID, Type: core.TypeExpense,
	})
	require.NoError(t, err)

	require.NoError(t, f.categories.Remove(ctx, food.ID))

	all, err := f.transactions.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
