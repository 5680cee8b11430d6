package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"moneta/internal/core"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Store is the durable ledger: accounts, categories and the transaction log
// behind a single SQLite file. Every mutating operation takes the writer
// mutex and runs inside one SQL transaction, so the log write and its
// balance read-modify-write commit or abort together. Reads go straight to
// the connection pool.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if necessary) the ledger database at dbPath and
// brings its schema up to date.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := openAndPing(dbPath)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

func openAndPing(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func dsn(path string) string {
	// _txlock=immediate takes the write lock at BEGIN, not at the first
	// write, which keeps the single-writer discipline honest under SQLite.
	return "file:" + path + "?_txlock=immediate&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the location of the backing database file.
func (s *Store) Path() string {
	return s.path
}

// querier is satisfied by both *sql.DB and *sql.Tx so row mapping can be
// shared between read paths and transactional paths.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// withTx runs fn inside a single SQL transaction under the writer mutex.
// An error from fn rolls the whole logical operation back; a rollback that
// itself fails is reported as an inconsistency because the on-disk state can
// no longer be assumed clean.
func (s *Store) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &core.PersistenceError{Op: op, Err: err}
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &core.InconsistencyError{Msg: op + ": rollback failed", Err: rbErr}
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return &core.PersistenceError{Op: op, Err: err}
	}
	return nil
}

// applyDeltas mutates stored balances inside an open transaction.
func applyDeltas(ctx context.Context, tx *sql.Tx, deltas []core.BalanceDelta) error {
	for _, d := range deltas {
		if err := adjustBalance(ctx, tx, d.Account, d.Amount); err != nil {
			return err
		}
	}
	return nil
}

func adjustBalance(ctx context.Context, tx *sql.Tx, accountID int64, delta decimal.Decimal) error {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT balance FROM accounts WHERE id = ?`, accountID).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return &core.InconsistencyError{Msg: fmt.Sprintf("ledger entry references missing account %d", accountID)}
	case err != nil:
		return &core.PersistenceError{Op: "read balance", Err: err}
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return &core.InconsistencyError{Msg: fmt.Sprintf("stored balance of account %d is not a decimal", accountID), Err: err}
	}

	_, err = tx.ExecContext(ctx, `UPDATE accounts SET balance = ? WHERE id = ?`,
		balance.Add(delta).String(), accountID)
	if err != nil {
		return &core.PersistenceError{Op: "write balance", Err: err}
	}
	return nil
}

func parseStoredDecimal(raw, what string, id int64) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &core.InconsistencyError{
			Msg: fmt.Sprintf("stored %s of row %d is not a decimal", what, id),
			Err: err,
		}
	}
	return d, nil
}
