package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moneta/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	accounts := []core.Account{
		{ID: 1, Name: "Wallet", Group: core.GroupAccount},
		{ID: 2, Name: "Bank", Group: core.GroupAccount},
	}
	categories := []core.Category{
		{ID: 10, Name: "Food", Type: core.CategoryExpense},
	}
	transactions := []core.Transaction{
		{
			ID:            1,
			DateTime:      time.Date(2025, 6, 10, 18, 45, 0, 0, time.UTC),
			Amount:        decimal.RequireFromString("12.5"),
			SourceAccount: 1, Category: 10,
			Note: "lunch", Type: core.TypeExpense,
		},
		{
			ID:            2,
			DateTime:      time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC),
			Amount:        decimal.RequireFromString("300"),
			SourceAccount: 1, DestinationAccount: 2,
			Note: "stash", Type: core.TypeTransfer,
		},
	}

	path := filepath.Join(t.TempDir(), "out", "transactions.csv")
	require.NoError(t, WriteCSV(transactions, accounts, categories, time.UTC, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "Date,Type,Amount,Source Account,Destination Account,Category,Note", lines[0])
	assert.Equal(t, "2025-06-10 18:45,Expense,12.50,Wallet,,Food,lunch", lines[1])
	assert.Equal(t, "2025-06-11 09:00,Transfer,300.00,Wallet,Bank,,stash", lines[2])
}

func TestWriteCSVEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(nil, nil, nil, time.UTC, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Date,Type,Amount,Source Account,Destination Account,Category,Note",
		strings.TrimSpace(string(raw)))
}
