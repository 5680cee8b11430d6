package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"moneta/internal/core"
)

// InsertCategory persists a new category and returns it with its assigned id.
func (s *Store) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	err := s.withTx(ctx, "insert category", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, budget, type) VALUES (?, ?, ?)`,
			c.Name, c.Budget.String(), string(c.Type))
		if err != nil {
			return &core.PersistenceError{Op: "insert category", Err: err}
		}
		id, err := res.LastInsertId()
		if err != nil {
			return &core.PersistenceError{Op: "insert category", Err: err}
		}
		c.ID = id
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}

	slog.InfoContext(ctx, "category created", "id", c.ID, "name", c.Name, "type", c.Type)
	return c, nil
}

// UpdateCategory rewrites name and budget. The type of an existing category
// is fixed; transactions recorded under it would change meaning otherwise.
func (s *Store) UpdateCategory(ctx context.Context, c core.Category) error {
	return s.withTx(ctx, "update category", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE categories SET name = ?, budget = ? WHERE id = ?`,
			c.Name, c.Budget.String(), c.ID)
		if err != nil {
			return &core.PersistenceError{Op: "update category", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &core.PersistenceError{Op: "update category", Err: err}
		}
		if n == 0 {
			return &core.NotFoundError{Kind: "category", ID: c.ID}
		}
		return nil
	})
}

// DeleteCategory removes the category and every transaction recorded under
// it, in one transaction.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	var cascaded int64
	err := s.withTx(ctx, "delete category", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE category = ?`, id)
		if err != nil {
			return &core.PersistenceError{Op: "delete category transactions", Err: err}
		}
		cascaded, _ = res.RowsAffected()

		res, err = tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
		if err != nil {
			return &core.PersistenceError{Op: "delete category", Err: err}
		}
		n, err := res.RowsAffected()
		if err != nil {
			return &core.PersistenceError{Op: "delete category", Err: err}
		}
		if n == 0 {
			return &core.NotFoundError{Kind: "category", ID: id}
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "category deleted", "id", id, "cascaded_transactions", cascaded)
	return nil
}

// GetCategory loads one category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, budget, type FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, &core.NotFoundError{Kind: "category", ID: id}
	}
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

// ListCategories returns every category, ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, name, budget, type FROM categories ORDER BY id`)
}

// ListCategoriesByType returns the income or the expense categories.
func (s *Store) ListCategoriesByType(ctx context.Context, t core.CategoryType) ([]core.Category, error) {
	return s.queryCategories(ctx,
		`SELECT id, name, budget, type FROM categories WHERE type = ? ORDER BY id`, string(t))
}

func (s *Store) queryCategories(ctx context.Context, query string, args ...any) ([]core.Category, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list categories", Err: err}
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list categories", Err: err}
	}
	return categories, nil
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c      core.Category
		budget string
		typ    string
	)
	if err := row.Scan(&c.ID, &c.Name, &budget, &typ); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Category{}, err
		}
		return core.Category{}, &core.PersistenceError{Op: "scan category", Err: err}
	}
	c.Type = core.CategoryType(typ)

	var err error
	if c.Budget, err = parseStoredDecimal(budget, "budget", c.ID); err != nil {
		return core.Category{}, err
	}
	return c, nil
}
