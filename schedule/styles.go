/*
styles.go - Repayment style generators

PURPOSE:
  A repayment style decides how the funded principal flows back. Selecting
  a style always clears every existing repayment first, regenerates from
  the payment flows, and finishes with the end-of-schedule correction.

STYLES:
  linear  - each payment is split evenly across the installments remaining
            from its eligible installment onward
  annuity - a level total amount is solved per payment; each installment's
            capital is that amount minus the period's interest
  balloon - nothing is repaid until the last day, when the whole principal
            returns as one lump sum (the correction IS the balloon)
  manual  - the default: the caller posts repayments directly

CORRECTION:
  Per-period division and ceiling rounding leave cumulative drift between
  total payments and total repayments. The correction posts the rounded
  difference as one extra repayment on the schedule's last day; it may be
  negative.

EXPECTED DEGENERATE CASE:
  Selecting a style before any payment is funded produces an all-zero
  schedule. That is not an error.
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// Style identifies the repayment generation strategy.
type Style string

const (
	StyleManual  Style = "manual"
	StyleLinear  Style = "linear"
	StyleAnnuity Style = "annuity"
	StyleBalloon Style = "balloon"
)

// =============================================================================
// BALLOON
// =============================================================================

// SetBalloonStyle defers the entire principal to one lump-sum repayment on
// the schedule's last day.
func (s *Schedule) SetBalloonStyle() error {
	s.style = StyleBalloon
	s.ledger.clearRepayments()
	return s.applyEndCorrection()
}

// =============================================================================
// LINEAR
// =============================================================================

// SetLinearStyle splits every payment evenly across the installments left
// from its eligible installment through the end of the schedule. Repayments
// from multiple payments accumulate on the same period-end days.
func (s *Schedule) SetLinearStyle() error {
	s.style = StyleLinear
	s.ledger.clearRepayments()

	total := s.installments.Len()
	for _, flow := range s.ledger.paymentFlows() {
		eligible, err := s.eligibleInstallment(flow.Date)
		if err != nil {
			return err
		}
		periodsLeft := total - eligible.Order + 1
		perPeriod := flow.Payment.
			Div(decimal.NewFromInt(int64(periodsLeft))).
			Round(2)

		for _, inst := range s.installments.All() {
			if inst.Order < eligible.Order {
				continue
			}
			if err := s.ledger.AddRepayment(inst.Period.LastDay, perPeriod); err != nil {
				return err
			}
		}
	}

	return s.applyEndCorrection()
}

// =============================================================================
// ANNUITY
// =============================================================================

// SetAnnuityStyle solves a level total installment amount per payment and
// posts amount-minus-interest as capital on every period end served by that
// payment. decimalPlaces is the rounding precision of the level amount;
// the customary value is 2.
func (s *Schedule) SetAnnuityStyle(decimalPlaces int32) error {
	s.style = StyleAnnuity
	s.annuityPlaces = decimalPlaces
	s.ledger.clearRepayments()
	s.engagements.Rebuild(s.ledger)

	one := decimal.New(1, 0)
	total := s.installments.Len()
	flows := s.ledger.paymentFlows()

	for n, flow := range flows {
		// Installments from the next payment onward are served by that
		// payment, not this one.
		var nextFlowDate Date
		if n+1 < len(flows) {
			nextFlowDate = flows[n+1].Date
		}

		eligible, err := s.eligibleInstallment(flow.Date)
		if err != nil {
			return err
		}
		periodsLeft := total - eligible.Order + 1

		rate := s.rates.RateAt(flow.Date).
			Div(decimal.NewFromInt(int64(s.granularity.PeriodsPerYear())))
		engagement := s.engagements.EngagementAt(flow.Date.AddDays(1))

		var amount decimal.Decimal
		if rate.IsZero() {
			// Zero-rate limit of the annuity formula: level principal.
			amount = engagement.Div(decimal.NewFromInt(int64(periodsLeft)))
		} else {
			factor := one.Add(rate).Pow(decimal.NewFromInt(int64(periodsLeft)))
			amount = engagement.Mul(rate.Mul(factor).Div(factor.Sub(one)))
		}
		amount = amount.RoundCeil(2).Round(decimalPlaces)

		for _, inst := range s.installments.All() {
			if inst.Order < eligible.Order {
				continue
			}
			if !nextFlowDate.IsZero() && inst.Period.FirstDay.AfterOrEqual(nextFlowDate) {
				continue
			}

			periodEnd := inst.Period.LastDay
			interest := s.engagements.EngagementAt(periodEnd).
				Mul(inst.Period.FractionOfYear).
				Mul(inst.Period.FractionOfPeriod).
				Mul(s.rates.RateAt(periodEnd)).
				Round(2)
			capital := amount.Sub(interest)

			if err := s.ledger.AddRepayment(periodEnd, capital); err != nil {
				return err
			}
			// The next installment's engagement must see this capital
			// reduction.
			s.engagements.Rebuild(s.ledger)
		}
	}

	return s.applyEndCorrection()
}

// =============================================================================
// SHARED MACHINERY
// =============================================================================

// eligibleInstallment finds the installment a payment starts repaying in:
// the one covering the later of the flow date and the first-repayment date,
// clamped into the schedule window. The construction payment lands one day
// before the window, hence the clamp.
func (s *Schedule) eligibleInstallment(flowDate Date) (*Installment, error) {
	date := flowDate
	if !s.firstRepayment.IsZero() {
		date = MaxDate(date, s.firstRepayment)
	}
	date = MaxDate(date, s.start)
	return s.installments.ForDate(date)
}

// applyEndCorrection reconciles cumulative rounding drift: the rounded gap
// between total payments and total repayments is posted as one extra
// repayment - possibly negative - on the schedule's last day.
func (s *Schedule) applyEndCorrection() error {
	diff := s.ledger.SumOfPayments().
		Sub(s.ledger.SumOfRepayments()).
		Round(2)
	if diff.IsZero() {
		return nil
	}
	return s.ledger.AddRepayment(s.end, diff)
}
