package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ENGAGEMENT TIMELINE - Outstanding principal as a derived step function
// =============================================================================

// EngagementTimeline is the outstanding principal ("engagement") over time,
// always recomputed in full from the flow ledger. A flow on day D changes
// the engagement effective D+1: interest for a day accrues on the balance
// carried into it.
//
// The timeline does not enforce non-negativity: cumulative repayments are
// allowed to exceed cumulative payments, and the engagement simply goes
// negative.
type EngagementTimeline struct {
	entries []engagementEntry
}

type engagementEntry struct {
	date   Date
	amount decimal.Decimal
}

func NewEngagementTimeline() *EngagementTimeline {
	return &EngagementTimeline{}
}

// Rebuild replays the ledger from scratch: flows are scanned in ascending
// date order, the running balance accumulates payment minus repayment, and
// each cumulative sum is recorded effective the day after its flow. A full
// rebuild is O(ledger size), which is cheap at the expected tens to low
// thousands of flows; no incremental maintenance is attempted.
func (t *EngagementTimeline) Rebuild(ledger *FlowLedger) {
	t.entries = t.entries[:0]

	balance := decimal.Zero
	for _, f := range ledger.All() {
		balance = balance.Add(f.Balance())
		t.entries = append(t.entries, engagementEntry{
			date:   f.Date.AddDays(1),
			amount: balance,
		})
	}
}

// EngagementAt returns the outstanding principal on the given day: the most
// recent cumulative value effective on or before it, else zero.
func (t *EngagementTimeline) EngagementAt(date Date) decimal.Decimal {
	amount := decimal.Zero
	for _, e := range t.entries {
		if e.date.After(date) {
			break
		}
		amount = e.amount
	}
	return amount
}
