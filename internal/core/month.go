package core

import (
	"fmt"
	"time"
)

// Month is a calendar month in a specific year, the unit every ledger query
// is scoped against.
type Month struct {
	Year  int
	Month time.Month
}

// CurrentMonth returns the month containing the given instant.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

// Prev returns the preceding month, rolling over the year at January.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, rolling over the year at December.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) Equal(o Month) bool {
	return m.Year == o.Year && m.Month == o.Month
}

// RangeIn returns the half-open interval [first instant of the month, first
// instant of the next month) in the given location. Ledger timestamps are
// stored in UTC, so callers compare against these bounds after conversion.
func (m Month) RangeIn(loc *time.Location) (start, end time.Time) {
	start = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// YearRangeIn returns the half-open interval covering a whole calendar year
// in the given location.
func YearRangeIn(year int, loc *time.Location) (start, end time.Time) {
	start = time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(1, 0, 0)
}
