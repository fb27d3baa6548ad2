package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RATE TIMELINE - Step function of effective annual interest rates
// =============================================================================

// RateEntry is one step of the rate timeline: the annual rate in force from
// its effective date onward.
type RateEntry struct {
	Date Date
	Rate decimal.Decimal
}

// RateTimeline is a sorted step function of effective annual rates. Before
// the first entry the rate is zero - zero entries are never stored, since
// zero is the implicit default.
type RateTimeline struct {
	entries []RateEntry
}

func NewRateTimeline() *RateTimeline {
	return &RateTimeline{}
}

// Add upserts a rate effective from the given date. Last write wins for a
// date. A zero rate is a no-op; a negative rate is rejected.
func (t *RateTimeline) Add(date Date, rate decimal.Decimal) error {
	if rate.IsZero() {
		return nil
	}
	if rate.IsNegative() {
		return ErrNegativeRate
	}

	i := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Date.AfterOrEqual(date)
	})
	if i < len(t.entries) && t.entries[i].Date.Equal(date) {
		t.entries[i].Rate = rate
		return nil
	}
	t.entries = append(t.entries, RateEntry{})
	copy(t.entries[i+1:], t.entries[i:])
	t.entries[i] = RateEntry{Date: date, Rate: rate}
	return nil
}

// RateAt returns the annual rate in force on the given day: the rate of the
// latest entry with an effective date on or before it, else zero. The step
// function is right-continuous.
func (t *RateTimeline) RateAt(date Date) decimal.Decimal {
	rate := decimal.Zero
	for _, e := range t.entries {
		if e.Date.After(date) {
			break
		}
		rate = e.Rate
	}
	return rate
}

// All returns the entries in ascending date order.
func (t *RateTimeline) All() []RateEntry {
	return t.entries
}
