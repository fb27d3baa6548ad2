package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// GRANULARITY - Period unit policy (month / quarter / year)
// =============================================================================

// Granularity maps a configured period unit to its calendar step, its weight
// within a year, and the number of periods per year. It drives both the
// calendar segmentation and the period accrual convention.
type Granularity int

const (
	Monthly Granularity = iota
	Quarterly
	Yearly
)

// ParseGranularity accepts the external selectors "monthly", "quarterly"
// and "yearly".
func ParseGranularity(s string) (Granularity, error) {
	switch s {
	case "monthly":
		return Monthly, nil
	case "quarterly":
		return Quarterly, nil
	case "yearly":
		return Yearly, nil
	}
	return Monthly, fmt.Errorf("%w: %q", ErrInvalidGranularity, s)
}

func (g Granularity) valid() bool {
	return g == Monthly || g == Quarterly || g == Yearly
}

// String returns the unit name: "month", "quarter" or "year".
func (g Granularity) String() string {
	switch g {
	case Quarterly:
		return "quarter"
	case Yearly:
		return "year"
	default:
		return "month"
	}
}

// Months returns the calendar step of one period.
func (g Granularity) Months() int {
	switch g {
	case Quarterly:
		return 3
	case Yearly:
		return 12
	default:
		return 1
	}
}

// PeriodsPerYear returns 12, 4 or 1.
func (g Granularity) PeriodsPerYear() int {
	switch g {
	case Quarterly:
		return 4
	case Yearly:
		return 1
	default:
		return 12
	}
}

// FractionOfYear returns the accrual weight of one full period under the
// period convention: 1/12, 1/4 or 1.
func (g Granularity) FractionOfYear() decimal.Decimal {
	return decimal.New(1, 0).Div(decimal.NewFromInt(int64(g.PeriodsPerYear())))
}
