package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"moneta/internal/app"
	"moneta/internal/cli"
	"moneta/internal/core"
	"moneta/internal/export"
	"moneta/internal/filter"
	"moneta/internal/services"
	"moneta/internal/storage"

	"github.com/shopspring/decimal"
)

const usage = `Usage: moneta <command> [flags]

Commands:
  summary   Print the current month's transactions and account balances
  export    Export transactions to CSV, optionally filtered
  backup    Write a consistent snapshot of the ledger database
  restore   Replace the ledger database with a snapshot

Run 'moneta <command> -h' for command flags.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(slog.LevelInfo)
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg.SlogLevel())
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to resolve timezone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	store := cli.InitStore(logger, cfg.DBPath)
	defer store.Close()

	accounts := services.NewAccountService(store, loc, cfg.BalanceCacheSize, cfg.BalanceCacheTTL)
	categories := services.NewCategoryService(store, accounts)
	transactions := services.NewTransactionService(store, accounts, loc)

	ctx := context.Background()
	switch os.Args[1] {
	case "summary":
		err = runSummary(ctx, accounts, categories, transactions, loc)
	case "export":
		err = runExport(ctx, transactions, accounts, categories, loc, os.Args[2:])
	case "backup":
		err = runBackup(ctx, store, logger, os.Args[2:])
	case "restore":
		err = runRestore(ctx, store, logger, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Println(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func runSummary(ctx context.Context, accounts *services.AccountService, categories *services.CategoryService, transactions *services.TransactionService, loc *time.Location) error {
	a, err := app.New(ctx, accounts, categories, transactions, loc)
	if err != nil {
		return err
	}

	fmt.Printf("Month: %s\n\n", a.Cursor())
	fmt.Println("Accounts:")
	for _, acct := range a.Accounts() {
		balance, err := accounts.BalanceAt(ctx, acct.ID, a.Cursor())
		if err != nil {
			return err
		}
		line := fmt.Sprintf("  %-24s %12s", acct.Name, balance.StringFixed(2))
		if acct.IsSaving() {
			line += fmt.Sprintf("  (goal %s)", acct.Goal.StringFixed(2))
		}
		fmt.Println(line)
	}

	fmt.Println("\nTransactions:")
	if len(a.Transactions()) == 0 {
		fmt.Println("  none")
		return nil
	}
	names := accountNames(a.Accounts())
	cats := categoryNames(append(a.IncomeCategories(), a.ExpenseCategories()...))
	for _, t := range a.Transactions() {
		fmt.Printf("  %s  %-8s %12s  %s\n",
			t.DateTime.In(loc).Format("2006-01-02 15:04"),
			t.Type,
			t.Amount.StringFixed(2),
			describe(t, names, cats))
	}
	return nil
}

func describe(t core.Transaction, accounts, categories map[int64]string) string {
	var what string
	if t.IsTransfer() {
		what = fmt.Sprintf("%s -> %s", accounts[t.SourceAccount], accounts[t.DestinationAccount])
	} else {
		what = fmt.Sprintf("%s [%s]", accounts[t.SourceAccount], categories[t.Category])
	}
	if t.Note != "" {
		what += " " + t.Note
	}
	return what
}

func runExport(ctx context.Context, transactions *services.TransactionService, accounts *services.AccountService, categories *services.CategoryService, loc *time.Location, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	var (
		out      = fs.String("o", "transactions.csv", "output file path")
		from     = fs.String("from", "", "start date, inclusive (YYYY-MM-DD)")
		to       = fs.String("to", "", "end date, inclusive (YYYY-MM-DD)")
		min      = fs.String("min", "", "minimum amount, inclusive")
		max      = fs.String("max", "", "maximum amount, inclusive")
		account  = fs.Int64("account", 0, "only transactions touching this account id")
		category = fs.Int64("category", 0, "only transactions with this category id")
		note     = fs.String("note", "", "only transactions with this note (case-insensitive)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	pipeline := &filter.Pipeline{}
	if *from != "" || *to != "" {
		fromDate, toDate, err := parseDateRange(*from, *to, loc)
		if err != nil {
			return err
		}
		pipeline.Add(filter.DateRange(fromDate, toDate, loc))
	}
	if *min != "" || *max != "" {
		lo, hi, err := parseAmountRange(*min, *max)
		if err != nil {
			return err
		}
		pipeline.Add(filter.AmountRange(lo, hi))
	}
	if *account != 0 {
		pipeline.Add(filter.ByAccount(*account))
	}
	if *category != 0 {
		pipeline.Add(filter.ByCategory(*category))
	}
	if *note != "" {
		pipeline.Add(filter.ByNote(*note))
	}

	all, err := transactions.All(ctx)
	if err != nil {
		return err
	}
	accountList, err := accounts.List(ctx)
	if err != nil {
		return err
	}
	categoryList, err := categories.List(ctx)
	if err != nil {
		return err
	}

	return export.WriteCSV(pipeline.Apply(all), accountList, categoryList, loc, *out)
}

func parseDateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	// An open end defaults to the widest representable bound.
	fromDate := time.Date(1, 1, 1, 0, 0, 0, 0, loc)
	toDate := time.Date(9999, 12, 31, 0, 0, 0, 0, loc)
	var err error
	if from != "" {
		if fromDate, err = time.ParseInLocation("2006-01-02", from, loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -from date %q: %w", from, err)
		}
	}
	if to != "" {
		if toDate, err = time.ParseInLocation("2006-01-02", to, loc); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid -to date %q: %w", to, err)
		}
	}
	return fromDate, toDate, nil
}

func parseAmountRange(min, max string) (decimal.Decimal, decimal.Decimal, error) {
	lo := decimal.Zero
	hi := decimal.New(1, 18)
	var err error
	if min != "" {
		if lo, err = decimal.NewFromString(min); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("invalid -min amount %q: %w", min, err)
		}
	}
	if max != "" {
		if hi, err = decimal.NewFromString(max); err != nil {
			return decimal.Zero, decimal.Zero, fmt.Errorf("invalid -max amount %q: %w", max, err)
		}
	}
	return lo, hi, nil
}

func runBackup(ctx context.Context, store *storage.Store, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	out := fs.String("o", "", "destination file for the snapshot (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("backup: -o destination is required")
	}
	if err := store.Backup(ctx, *out); err != nil {
		return err
	}
	logger.Info("Backup written", "file", *out)
	return nil
}

func runRestore(ctx context.Context, store *storage.Store, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	in := fs.String("i", "", "snapshot file to restore from (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		return fmt.Errorf("restore: -i snapshot file is required")
	}
	if err := store.Restore(ctx, *in); err != nil {
		return err
	}
	logger.Info("Ledger restored", "file", *in)
	return nil
}

func accountNames(accounts []core.Account) map[int64]string {
	m := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a.Name
	}
	return m
}

func categoryNames(categories []core.Category) map[int64]string {
	m := make(map[int64]string, len(categories))
	for _, c := range categories {
		m[c.ID] = c.Name
	}
	return m
}
