/*
flow.go - Per-day net cash movement ledger

PURPOSE:
  The FlowLedger is the source of truth for everything the engine computes.
  Every funding payment and every generated repayment is recorded here, one
  Flow per calendar day, and the outstanding balance is always derived by
  replaying the ledger - there is no separate balance field to drift out of
  sync.

INVARIANTS:
  1. One Flow per date, keys unique, kept sorted ascending.
  2. Flows are never deleted; updates are additive or explicit overwrites.
  3. After the end-of-schedule correction:
       sum(payments) == sum(repayments) == sum(installment capital)

POSTING RULES:
  - Zero amounts are a no-op (no empty Flow is created).
  - Negative payments are rejected with ErrNegativeAmount.
  - Negative repayments are allowed: they are corrections.

SEE ALSO:
  - engagement.go: Outstanding balance replayed from this ledger
  - styles.go: Repayment generators writing into this ledger
*/
package schedule

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FLOW - One calendar day's net movement
// =============================================================================

// Flow records the money that moved on one calendar day: Payment is the
// amount funded to the borrower, Repayment the amount returned.
type Flow struct {
	Date      Date
	Payment   decimal.Decimal
	Repayment decimal.Decimal
}

// Balance is the day's net effect on the outstanding principal.
func (f *Flow) Balance() decimal.Decimal {
	return f.Payment.Sub(f.Repayment)
}

// =============================================================================
// FLOW LEDGER - Date-keyed, sorted collection of flows
// =============================================================================

type FlowLedger struct {
	flows []*Flow
}

func NewFlowLedger() *FlowLedger {
	return &FlowLedger{}
}

// add posts an amount on a date. The Flow for that date is created lazily on
// first use. With overwrite false the amount accumulates onto the existing
// field; with overwrite true both fields are replaced (the untouched side is
// reset to zero).
func (l *FlowLedger) add(date Date, amount decimal.Decimal, isRepayment, overwrite bool) error {
	if amount.IsZero() {
		return nil
	}
	if amount.IsNegative() && !isRepayment {
		return ErrNegativeAmount
	}

	payment, repayment := amount, decimal.Zero
	if isRepayment {
		payment, repayment = decimal.Zero, amount
	}

	flow := l.flowAt(date)
	if flow == nil {
		flow = &Flow{Date: date}
		l.insert(flow)
	}

	if overwrite {
		flow.Payment = payment
		flow.Repayment = repayment
	} else {
		flow.Payment = flow.Payment.Add(payment)
		flow.Repayment = flow.Repayment.Add(repayment)
	}
	return nil
}

// AddPayment posts a funding payment. Amount must not be negative.
func (l *FlowLedger) AddPayment(date Date, amount decimal.Decimal) error {
	return l.add(date, amount, false, false)
}

// AddRepayment posts a repayment. Negative amounts act as corrections.
func (l *FlowLedger) AddRepayment(date Date, amount decimal.Decimal) error {
	return l.add(date, amount, true, false)
}

// SetPayment destructively replaces the date's flow with a pure payment.
func (l *FlowLedger) SetPayment(date Date, amount decimal.Decimal) error {
	return l.add(date, amount, false, true)
}

// SetRepayment destructively replaces the date's flow with a pure repayment.
func (l *FlowLedger) SetRepayment(date Date, amount decimal.Decimal) error {
	return l.add(date, amount, true, true)
}

// flowAt returns the Flow on the exact date, or nil.
func (l *FlowLedger) flowAt(date Date) *Flow {
	i := sort.Search(len(l.flows), func(i int) bool {
		return l.flows[i].Date.AfterOrEqual(date)
	})
	if i < len(l.flows) && l.flows[i].Date.Equal(date) {
		return l.flows[i]
	}
	return nil
}

// insert keeps the ledger sorted ascending by date.
func (l *FlowLedger) insert(flow *Flow) {
	i := sort.Search(len(l.flows), func(i int) bool {
		return l.flows[i].Date.After(flow.Date)
	})
	l.flows = append(l.flows, nil)
	copy(l.flows[i+1:], l.flows[i:])
	l.flows[i] = flow
}

// All returns the flows in ascending date order. Callers must not reorder.
func (l *FlowLedger) All() []*Flow {
	return l.flows
}

func (l *FlowLedger) Len() int {
	return len(l.flows)
}

// paymentFlows snapshots the payment-bearing flows, in date order. Style
// generators iterate this snapshot while posting repayments back into the
// ledger, so the iteration is immune to its own writes.
func (l *FlowLedger) paymentFlows() []Flow {
	var out []Flow
	for _, f := range l.flows {
		if !f.Payment.IsZero() {
			out = append(out, *f)
		}
	}
	return out
}

// clearRepayments zeroes every repayment, keeping the flows in place.
func (l *FlowLedger) clearRepayments() {
	for _, f := range l.flows {
		f.Repayment = decimal.Zero
	}
}

func (l *FlowLedger) SumOfPayments() decimal.Decimal {
	sum := decimal.Zero
	for _, f := range l.flows {
		sum = sum.Add(f.Payment)
	}
	return sum
}

func (l *FlowLedger) SumOfRepayments() decimal.Decimal {
	sum := decimal.Zero
	for _, f := range l.flows {
		sum = sum.Add(f.Repayment)
	}
	return sum
}
