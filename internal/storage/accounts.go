package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"moneta/internal/core"
)

// InsertAccount persists a new account and returns it with its assigned id.
func (s *Store) InsertAccount(ctx context.Context, a core.Account) (core.Account, error) {
	err := s.withTx(ctx, "insert account", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (name, group_name, balance, goal) VALUES (?, ?, ?, ?)`,
			a.Name, string(a.Group), a.Balance.String(), a.Goal.String())
		if err != nil {
			return &core.PersistenceError{Op: "insert account", Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &core.PersistenceError{Op: "insert account", Err: err}
		}
		a.ID = id
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "account created",
		"id", a.ID, "name", a.Name, "group", a.Group)
	return a, nil
}

// UpdateAccount rewrites name, group and goal. The stored balance is owned by
// the ledger and deliberately left untouched here.
func (s *Store) UpdateAccount(ctx context.Context, a core.Account) error {
	return s.withTx(ctx, "update account", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE accounts SET name = ?, group_name = ?, goal = ? WHERE id = ?`,
			a.Name, string(a.Group), a.Goal.String(), a.ID)
		if err != nil {
			return &core.PersistenceError{Op: "update account", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &core.PersistenceError{Op: "update account", Err: err}
		}
		if n == 0 {
			return &core.NotFoundError{Kind: "account", ID: a.ID}
		}
		return nil
	})
}

// DeleteAccount removes the account and, in the same transaction, every
// ledger entry whose source or destination references it.
func (s *Store) DeleteAccount(ctx context.Context, id int64) error {
	var cascaded int64
	err := s.withTx(ctx, "delete account", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM transactions WHERE source_account = ? OR destination_account = ?`, id, id)
		if err != nil {
			return &core.PersistenceError{Op: "delete account transactions", Err: err}
		}
		cascaded, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
		if err != nil {
			return &core.PersistenceError{Op: "delete account", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &core.PersistenceError{Op: "delete account", Err: err}
		}
		if n == 0 {
			return &core.NotFoundError{Kind: "account", ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "account deleted", "id", id, "cascaded_transactions", cascaded)
	return nil
}

// GetAccount loads one account by id.
func (s *Store) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	return s.getAccount(ctx, s.db, id)
}

func (s *Store) getAccount(ctx context.Context, q querier, id int64) (core.Account, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, name, group_name, balance, goal FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, &core.NotFoundError{Kind: "account", ID: id}
	}
	if err != nil {
		return core.Account{}, err
	}
	return a, nil
}

// ListAccounts returns every account, ordered by id.
func (s *Store) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, group_name, balance, goal FROM accounts ORDER BY id`)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list accounts", Err: err}
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list accounts", Err: err}
	}
	return accounts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a             core.Account
		group         string
		balance, goal string
	)
	if err := row.Scan(&a.ID, &a.Name, &group, &balance, &goal); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Account{}, err
		}
		return core.Account{}, &core.PersistenceError{Op: "scan account", Err: err}
	}
	a.Group = core.AccountGroup(group)

	var err error
	if a.Balance, err = parseStoredDecimal(balance, "balance", a.ID); err != nil {
		return core.Account{}, err
	}
	if a.Goal, err = parseStoredDecimal(goal, "goal", a.ID); err != nil {
		return core.Account{}, err
	}
	return a, nil
}
