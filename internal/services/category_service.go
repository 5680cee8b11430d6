package services

import (
	"context"

	"moneta/internal/core"
	"moneta/internal/storage"
)

// CategoryService owns category CRUD.
type CategoryService struct {
	store    *storage.Store
	accounts *AccountService
}

func NewCategoryService(store *storage.Store, accounts *AccountService) *CategoryService {
	return &CategoryService{store: store, accounts: accounts}
}

func (s *CategoryService) Add(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.InsertCategory(ctx, c)
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.store.UpdateCategory(ctx, c)
}

// Remove deletes the category and every transaction recorded under it.
func (s *CategoryService) Remove(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.accounts.InvalidateBalances()
	return nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (core.Category, error) {
	return s.store.GetCategory(ctx, id)
}

func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *CategoryService) ListIncome(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategoriesByType(ctx, core.CategoryIncome)
}

func (s *CategoryService) ListExpense(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategoriesByType(ctx, core.CategoryExpense)
}
