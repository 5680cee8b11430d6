package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"moneta/internal/core"
)

// InsertTransaction appends an entry to the ledger and applies its effect to
// the stored balances, all in one transaction. The entry comes back with its
// assigned id and its timestamp normalized to UTC.
func (s *Store) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.DateTime = t.DateTime.UTC()
	err := s.withTx(ctx, "insert transaction", func(tx *sql.Tx) error {
		id, err := insertTransactionRow(ctx, tx, t)
		if err != nil {
			return err
		}
		t.ID = id
		return applyDeltas(ctx, tx, core.Deltas(t, core.Apply))
	})
	if err != nil {
		return core.Transaction{}, err
	}

	slog.InfoContext(ctx, "transaction recorded",
		"id", t.ID, "type", t.Type, "amount", t.Amount.String(), "source", t.SourceAccount)
	return t, nil
}

// RemoveTransaction rolls the entry's effect back out of the stored balances
// and deletes it from the log, in one transaction.
func (s *Store) RemoveTransaction(ctx context.Context, id int64) error {
	var removed core.Transaction
	err := s.withTx(ctx, "remove transaction", func(tx *sql.Tx) error {
		t, err := getTransaction(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := applyDeltas(ctx, tx, core.Deltas(t, core.Rollback)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id); err != nil {
			return &core.PersistenceError{Op: "delete transaction", Err: err}
		}
		removed = t
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transaction removed",
		"id", removed.ID, "type", removed.Type, "amount", removed.Amount.String())
	return nil
}

// UpdateTransaction replaces the stored entry under its existing id. The old
// effect is rolled back and the new effect applied from scratch rather than
// diffed; this relies on Deltas' rollback being the exact inverse of apply.
func (s *Store) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	t.DateTime = t.DateTime.UTC()
	err := s.withTx(ctx, "update transaction", func(tx *sql.Tx) error {
		old, err := getTransaction(ctx, tx, t.ID)
		if err != nil {
			return err
		}
		if err := applyDeltas(ctx, tx, core.Deltas(old, core.Rollback)); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE transactions
			 SET date_time = ?, amount = ?, source_account = ?, category = ?,
			     destination_account = ?, note = ?, type = ?
			 WHERE id = ?`,
			t.DateTime.UnixMilli(), t.Amount.String(), t.SourceAccount,
			nullableID(t.Category), nullableID(t.DestinationAccount),
			t.Note, string(t.Type), t.ID)
		if err != nil {
			return &core.PersistenceError{Op: "update transaction", Err: err}
		}
		return applyDeltas(ctx, tx, core.Deltas(t, core.Apply))
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "transaction updated",
		"id", t.ID, "type", t.Type, "amount", t.Amount.String())
	return nil
}

// GetTransaction loads one ledger entry by id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return getTransaction(ctx, s.db, id)
}

// ListTransactions returns the whole log, unordered, for export.
func (s *Store) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return s.queryTransactions(ctx, `SELECT `+transactionColumns+` FROM transactions`)
}

// ListByMonth returns the entries whose timestamp falls inside the given
// month of the display location, newest first. Month bounds are computed in
// local time and converted to UTC before comparison against the stored
// epoch-millisecond timestamps.
func (s *Store) ListByMonth(ctx context.Context, m core.Month, loc *time.Location) ([]core.Transaction, error) {
	start, end := m.RangeIn(loc)
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE date_time >= ? AND date_time < ?
		 ORDER BY date_time DESC, id DESC`,
		start.UnixMilli(), end.UnixMilli())
}

// ListByYear returns the entries of one calendar year of the display
// location, newest first.
func (s *Store) ListByYear(ctx context.Context, year int, loc *time.Location) ([]core.Transaction, error) {
	start, end := core.YearRangeIn(year, loc)
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE date_time >= ? AND date_time < ?
		 ORDER BY date_time DESC, id DESC`,
		start.UnixMilli(), end.UnixMilli())
}

// AccountActivitySince returns every entry touching the account dated on or
// after cutoff. The time-scoped balance resolver subtracts these from the
// stored balance to reconstruct a past month's closing balance.
func (s *Store) AccountActivitySince(ctx context.Context, accountID int64, cutoff time.Time) ([]core.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE (source_account = ? OR destination_account = ?) AND date_time >= ?`,
		accountID, accountID, cutoff.UnixMilli())
}

const transactionColumns = `id, date_time, amount, source_account, category, destination_account, note, type`

func insertTransactionRow(ctx context.Context, tx *sql.Tx, t core.Transaction) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO transactions
		 (date_time, amount, source_account, category, destination_account, note, type)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.DateTime.UnixMilli(), t.Amount.String(), t.SourceAccount,
		nullableID(t.Category), nullableID(t.DestinationAccount),
		t.Note, string(t.Type))
	if err != nil {
		return 0, &core.PersistenceError{Op: "insert transaction", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &core.PersistenceError{Op: "insert transaction", Err: err}
	}
	return id, nil
}

func getTransaction(ctx context.Context, q querier, id int64) (core.Transaction, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, &core.NotFoundError{Kind: "transaction", ID: id}
	}
	if err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (s *Store) queryTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list transactions", Err: err}
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list transactions", Err: err}
	}
	return transactions, nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t           core.Transaction
		millis      int64
		amount, typ string
		category    sql.NullInt64
		destination sql.NullInt64
	)
	err := row.Scan(&t.ID, &millis, &amount, &t.SourceAccount, &category, &destination, &t.Note, &typ)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, &core.PersistenceError{Op: "scan transaction", Err: err}
	}

	t.DateTime = time.UnixMilli(millis).UTC()
	t.Category = category.Int64
	t.DestinationAccount = destination.Int64
	t.Type = core.TransactionType(typ)

	if t.Amount, err = parseStoredDecimal(amount, "amount", t.ID); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}
