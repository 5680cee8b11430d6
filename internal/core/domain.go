package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	GroupAccount AccountGroup = "Account"
	GroupSaving  AccountGroup = "Saving"

	CategoryIncome  CategoryType = "Income"
	CategoryExpense CategoryType = "Expense"

	TypeIncome   TransactionType = "Income"
	TypeExpense  TransactionType = "Expense"
	TypeTransfer TransactionType = "Transfer"
)

type (
	AccountGroup    string
	CategoryType    string
	TransactionType string

	// Account is a money holder. Balance is the authoritative running
	// balance and changes only through the ledger; it is never edited
	// directly. Goal is nonzero iff the account is a savings goal.
	Account struct {
		ID      int64
		Name    string
		Group   AccountGroup
		Balance decimal.Decimal
		Goal    decimal.Decimal
	}

	// Category labels income or expense transactions. A zero budget means
	// the category is not budget-tracked.
	Category struct {
		ID     int64
		Name   string
		Type   CategoryType
		Budget decimal.Decimal
	}

	// Transaction is one ledger entry. Amount is a magnitude; the direction
	// of the money movement is implied by Type. DateTime is stored in UTC
	// and converted to the display location for presentation.
	//
	// For transfers Category is ignored and DestinationAccount is required;
	// for income and expenses it is the other way around.
	Transaction struct {
		ID                 int64
		DateTime           time.Time
		Amount             decimal.Decimal
		SourceAccount      int64
		DestinationAccount int64
		Category           int64
		Note               string
		Type               TransactionType
	}
)

var (
	ErrEmptyName          = NewValidationError("name cannot be empty")
	ErrInvalidGroup       = NewValidationError("group must be Account or Saving")
	ErrMissingGoal        = NewValidationError("saving goal is not set")
	ErrNegativeGoal       = NewValidationError("goal cannot be negative")
	ErrInvalidCategory    = NewValidationError("category type must be Income or Expense")
	ErrNegativeBudget     = NewValidationError("budget cannot be negative")
	ErrNegativeAmount     = NewValidationError("amount cannot be negative")
	ErrZeroDate           = NewValidationError("transaction date is not set")
	ErrMissingSource      = NewValidationError("source account is required")
	ErrMissingDestination = NewValidationError("destination account is required for transfers")
	ErrMissingCategory    = NewValidationError("category is required")
	ErrInvalidType        = NewValidationError("type must be Income, Expense or Transfer")
)

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	switch a.Group {
	case GroupAccount, GroupSaving:
	default:
		return ErrInvalidGroup
	}
	if a.Goal.IsNegative() {
		return ErrNegativeGoal
	}
	if a.Group == GroupSaving && a.Goal.IsZero() {
		return ErrMissingGoal
	}
	return nil
}

// IsSaving reports whether the account tracks a savings goal.
func (a Account) IsSaving() bool {
	return a.Group == GroupSaving
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	switch c.Type {
	case CategoryIncome, CategoryExpense:
	default:
		return ErrInvalidCategory
	}
	if c.Budget.IsNegative() {
		return ErrNegativeBudget
	}
	return nil
}

// HasBudget reports whether the category is budget-tracked.
func (c Category) HasBudget() bool {
	return !c.Budget.IsZero()
}

func (t Transaction) Validate() error {
	if t.DateTime.IsZero() {
		return ErrZeroDate
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	if t.SourceAccount == 0 {
		return ErrMissingSource
	}
	switch t.Type {
	case TypeTransfer:
		if t.DestinationAccount == 0 {
			return ErrMissingDestination
		}
	case TypeIncome, TypeExpense:
		if t.Category == 0 {
			return ErrMissingCategory
		}
	default:
		return ErrInvalidType
	}
	return nil
}

// IsTransfer reports whether the transaction moves money between two accounts.
func (t Transaction) IsTransfer() bool {
	return t.Type == TypeTransfer
}

// Touches reports whether the transaction affects the given account's balance.
func (t Transaction) Touches(accountID int64) bool {
	return t.SourceAccount == accountID || t.DestinationAccount == accountID
}
