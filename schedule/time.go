package schedule

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity time value (schedules never care about clocks)
// =============================================================================

// Date is an immutable, totally ordered calendar day. All engine dates are
// normalized to UTC midnight so comparisons are pure day comparisons.
type Date struct {
	t time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{t: d.t.AddDate(0, n, 0)} }
func (d Date) AddYears(n int) Date  { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the number of whole days from one date to another.
// It counts intervals, not days: DaysBetween(Jan 1, Jan 31) == 30.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// =============================================================================
// DAY-COUNT HELPERS
// =============================================================================

// DaysInYear returns 365 or 366 by the Gregorian leap rule. It is the
// denominator for the daily accrual convention.
func DaysInYear(year int) int {
	if isLeapYear(year) {
		return 366
	}
	return 365
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// lastDayOfMonth returns the final calendar day of the given month.
func lastDayOfMonth(year int, month time.Month) Date {
	return NewDate(year, month+1, 1).AddDays(-1)
}
