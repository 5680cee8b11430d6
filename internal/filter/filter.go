// Package filter provides composable predicate filtering over in-memory
// transaction collections, used for export and reporting.
package filter

import (
	"strings"
	"time"

	"moneta/internal/core"

	"github.com/shopspring/decimal"
)

// Filter is a pure predicate over one transaction. Filters are side-effect
// free, so evaluation order never matters.
type Filter func(core.Transaction) bool

// Pipeline holds an ordered list of filters combined with logical AND.
// There is no OR or negation; callers compose by appending.
type Pipeline struct {
	filters []Filter
}

// Add appends a filter and returns the pipeline for chaining.
func (p *Pipeline) Add(f Filter) *Pipeline {
	p.filters = append(p.filters, f)
	return p
}

// Apply returns the transactions satisfying every filter, preserving input
// order.
func (p *Pipeline) Apply(transactions []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if p.matches(t) {
			out = append(out, t)
		}
	}
	return out
}

func (p *Pipeline) matches(t core.Transaction) bool {
	for _, f := range p.filters {
		if !f(t) {
			return false
		}
	}
	return true
}

// DateRange keeps transactions whose calendar date in loc falls inside
// [from, to], both ends inclusive. Only the date is compared, never the
// time of day.
func DateRange(from, to time.Time, loc *time.Location) Filter {
	lo := dateOnly(from)
	hi := dateOnly(to)
	return func(t core.Transaction) bool {
		d := dateOnly(t.DateTime.In(loc))
		return !d.Before(lo) && !d.After(hi)
	}
}

// AmountRange keeps transactions with lo <= amount <= hi.
func AmountRange(lo, hi decimal.Decimal) Filter {
	return func(t core.Transaction) bool {
		return !t.Amount.LessThan(lo) && !t.Amount.GreaterThan(hi)
	}
}

// ByAccount keeps transactions whose source or destination is the account.
func ByAccount(accountID int64) Filter {
	return func(t core.Transaction) bool {
		return t.Touches(accountID)
	}
}

// ByCategory keeps transactions recorded under the category.
func ByCategory(categoryID int64) Filter {
	return func(t core.Transaction) bool {
		return t.Category == categoryID
	}
}

// ByNote keeps transactions whose note matches exactly, ignoring case.
func ByNote(note string) Filter {
	return func(t core.Transaction) bool {
		return strings.EqualFold(t.Note, note)
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
