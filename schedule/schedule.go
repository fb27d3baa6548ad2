/*
Package schedule computes period-by-period loan repayment schedules.

PURPOSE:
  Given a funding timeline (payments), an interest-rate timeline, a date
  range and a repayment style, the engine produces a deterministic,
  auditable amortization table: one installment per calendar period with
  its interest and capital breakdown.

ARCHITECTURE:
  FlowLedger          per-day net cash movements, the source of truth
  RateTimeline        step function of effective annual rates
  EngagementTimeline  outstanding principal, replayed from the ledger
  CalendarPeriod      schedule-clipped month/quarter/year segments
  Installment         one schedule row, computed from rate/engagement ticks
  Schedule            the facade owning and orchestrating all of the above

USAGE:
  s, err := schedule.New(
      decimal.NewFromInt(120000),          // principal
      decimal.NewFromFloat(0.02),          // annual rate
      schedule.NewDate(2019, time.December, 31),
      schedule.NewDate(2020, time.December, 31),
      schedule.Monthly,
  )
  if err != nil { ... }
  if err := s.SetLinearStyle(); err != nil { ... }
  s.Calc()
  for _, inst := range s.Installments().All() {
      fmt.Println(inst.Order, inst.Period.Label, inst.Interest(), inst.Capital())
  }

CONCURRENCY:
  The engine is a single-owner, in-memory, synchronous calculator. It takes
  no locks; callers sharing a Schedule across goroutines must serialize
  access externally.
*/
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SCHEDULE - Engine facade
// =============================================================================

// Schedule owns the ledger, the timelines, the period policy and the
// installment collection, and exposes Calc as the single computation entry
// point.
type Schedule struct {
	start Date // first accrual day, one day after funding
	end   Date

	firstRepayment Date // zero value = no grace period
	granularity    Granularity
	calcDaily      bool
	style          Style
	annuityPlaces  int32

	ledger       *FlowLedger
	rates        *RateTimeline
	engagements  *EngagementTimeline
	installments *InstallmentCollection
}

// New builds a schedule funded with the principal on the funding date. The
// effective schedule window is [funding+1 day, end]: interest starts
// accruing the day after the money moves. The initial rate becomes
// effective on the funding date.
func New(principal, annualRate decimal.Decimal, funding, end Date, g Granularity) (*Schedule, error) {
	if !g.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGranularity, int(g))
	}

	start := funding.AddDays(1)
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is later than end %s", ErrInvalidDateRange, start, end)
	}

	s := &Schedule{
		start:         start,
		end:           end,
		granularity:   g,
		style:         StyleManual,
		annuityPlaces: 2,
		ledger:        NewFlowLedger(),
		rates:         NewRateTimeline(),
		engagements:   NewEngagementTimeline(),
	}

	if err := s.AddPayment(funding, principal); err != nil {
		return nil, err
	}
	if err := s.AddRate(funding, annualRate); err != nil {
		return nil, err
	}

	installments, err := newInstallmentCollection(start, end, g)
	if err != nil {
		return nil, err
	}
	s.installments = installments

	return s, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

// SetFirstRepaymentDate configures the grace period boundary. The date must
// lie inside the schedule window.
func (s *Schedule) SetFirstRepaymentDate(date Date) error {
	if date.Before(s.start) || date.After(s.end) {
		return fmt.Errorf("%w: first repayment %s outside [%s, %s]",
			ErrInvalidDateRange, date, s.start, s.end)
	}
	s.firstRepayment = date
	return nil
}

// SetCalcDaily toggles the daily accrual convention: actual day counts over
// 365/366 instead of period fractions of a year.
func (s *Schedule) SetCalcDaily(daily bool) {
	s.calcDaily = daily
}

// =============================================================================
// MUTATION
// =============================================================================

// AddPayment posts a funding payment. A zero amount is a no-op; a negative
// amount fails with ErrNegativeAmount.
func (s *Schedule) AddPayment(date Date, amount decimal.Decimal) error {
	return s.ledger.AddPayment(date, amount)
}

// AddRepayment posts a manual repayment. Negative amounts are corrections.
func (s *Schedule) AddRepayment(date Date, amount decimal.Decimal) error {
	return s.ledger.AddRepayment(date, amount)
}

// AddRate posts an annual rate effective from the given date.
func (s *Schedule) AddRate(date Date, rate decimal.Decimal) error {
	return s.rates.Add(date, rate)
}

// =============================================================================
// CALCULATION
// =============================================================================

// Calc rebuilds the engagement timeline from the ledger, then recomputes
// every installment in order. Calc is idempotent: without intervening
// ledger mutation, repeated calls yield identical results.
func (s *Schedule) Calc() {
	s.engagements.Rebuild(s.ledger)

	ctx := &calcContext{
		ledger:         s.ledger,
		rates:          s.rates,
		engagements:    s.engagements,
		style:          s.style,
		calcDaily:      s.calcDaily,
		firstRepayment: s.firstRepayment,
		scheduleEnd:    s.end,
	}

	acc := &calcAccumulator{}
	for _, inst := range s.installments.All() {
		inst.compute(ctx, acc)
	}
}

// =============================================================================
// READ-ONLY ACCESSORS
// =============================================================================

func (s *Schedule) Start() Date               { return s.start }
func (s *Schedule) End() Date                 { return s.end }
func (s *Schedule) FirstRepaymentDate() Date  { return s.firstRepayment }
func (s *Schedule) Granularity() Granularity  { return s.granularity }
func (s *Schedule) Style() Style              { return s.style }
func (s *Schedule) IsCalcDaily() bool         { return s.calcDaily }

// Installments returns the installment collection for iteration and lookup.
func (s *Schedule) Installments() *InstallmentCollection { return s.installments }

// Flows returns the ledger flows in ascending date order.
func (s *Schedule) Flows() []*Flow { return s.ledger.All() }

// Rates returns the rate timeline entries in ascending date order.
func (s *Schedule) Rates() []RateEntry { return s.rates.All() }

// RateAt exposes the rate step function.
func (s *Schedule) RateAt(date Date) decimal.Decimal { return s.rates.RateAt(date) }

// EngagementAt exposes the engagement step function as of the last rebuild.
func (s *Schedule) EngagementAt(date Date) decimal.Decimal {
	return s.engagements.EngagementAt(date)
}

// SumOfPayments totals all funded payments.
func (s *Schedule) SumOfPayments() decimal.Decimal { return s.ledger.SumOfPayments() }

// SumOfRepayments totals all repayments, corrections included.
func (s *Schedule) SumOfRepayments() decimal.Decimal { return s.ledger.SumOfRepayments() }
