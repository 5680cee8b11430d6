package core

import "github.com/shopspring/decimal"

// Direction selects whether a transaction's effect is being applied to the
// stored balances or reversed out of them.
type Direction int

const (
	Apply    Direction = 1
	Rollback Direction = -1
)

// BalanceDelta is one signed change to one account's stored balance.
type BalanceDelta struct {
	Account int64
	Amount  decimal.Decimal
}

// Deltas returns the balance changes the transaction causes in the given
// direction:
//
//	Income    +amount on the source account
//	Expense   -amount on the source account
//	Transfer  -amount on the source, +amount on the destination
//
// Rollback negates every delta, so for any transaction t and balance b,
// applying Deltas(t, Apply) then Deltas(t, Rollback) restores b exactly.
// Edits are implemented as rollback-then-apply and depend on this contract;
// any change to one direction must mirror the other.
func Deltas(t Transaction, dir Direction) []BalanceDelta {
	signed := t.Amount
	if dir == Rollback {
		signed = signed.Neg()
	}
	switch t.Type {
	case TypeIncome:
		return []BalanceDelta{{Account: t.SourceAccount, Amount: signed}}
	case TypeExpense:
		return []BalanceDelta{{Account: t.SourceAccount, Amount: signed.Neg()}}
	case TypeTransfer:
		return []BalanceDelta{
			{Account: t.SourceAccount, Amount: signed.Neg()},
			{Account: t.DestinationAccount, Amount: signed},
		}
	}
	return nil
}

// NetEffectOn returns the apply-direction change the transaction causes to
// one account's balance, zero if the transaction does not touch it.
func NetEffectOn(t Transaction, accountID int64) decimal.Decimal {
	total := decimal.Zero
	for _, d := range Deltas(t, Apply) {
		if d.Account == accountID {
			total = total.Add(d.Amount)
		}
	}
	return total
}
