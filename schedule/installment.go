/*
installment.go - Per-period interest/capital computation

PURPOSE:
  One Installment per calendar period, covering the schedule contiguously.
  Each Calc pass decomposes the period into ticks - day groups sharing the
  same (rate, engagement) pair - and accrues interest tick by tick under
  the configured day-count convention. Capital is the sum of repayments
  whose flow date falls inside the period.

TICKS:
  Days are grouped by value equality across the whole period span, not by
  contiguous runs: a (rate, engagement) pair recurring on non-adjacent days
  merges into a single tick whose percentage is its total day count over
  the span length. If the percentages do not sum to exactly one, the
  residual lands on the chronologically last tick.

ANNUITY + DAILY RECONCILIATION:
  When the annuity style is combined with daily accrual, the per-tick gap
  between the period convention and the daily convention accumulates in
  globalDiff. During a grace period there is no capital to offset against,
  so the gap parks in firstCapitalPossible; once the first repayment date
  has passed, the parked balance is released into capital and out of
  interest. The final installment absorbs whatever globalDiff remains.

CONTEXT THREADING:
  Installments hold no reference to their collection or schedule. The Calc
  pass threads an explicit calcContext (ledger, timelines, configuration)
  and a calcAccumulator through every computation - a left fold over the
  installments.
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INSTALLMENT - One schedule row
// =============================================================================

// Installment is one row of the repayment schedule. Interest and capital are
// recomputed on every Calc pass; the period and order are fixed at
// construction.
type Installment struct {
	Period CalendarPeriod
	Order  int

	interest decimal.Decimal
	capital  decimal.Decimal
}

// Interest returns the accrued interest, rounded to the cent.
func (i *Installment) Interest() decimal.Decimal {
	return i.interest.Round(2)
}

// Capital returns the principal repaid, rounded to the cent.
func (i *Installment) Capital() decimal.Decimal {
	return i.capital.Round(2)
}

// Whole is the total installment amount: rounded interest plus rounded
// capital.
func (i *Installment) Whole() decimal.Decimal {
	return i.Interest().Add(i.Capital())
}

// =============================================================================
// COMPUTATION CONTEXT
// =============================================================================

// calcContext is the immutable view an installment computes against: the
// ledger, both timelines, and the schedule configuration.
type calcContext struct {
	ledger      *FlowLedger
	rates       *RateTimeline
	engagements *EngagementTimeline

	style          Style
	calcDaily      bool
	firstRepayment Date // zero value = no grace period configured
	scheduleEnd    Date
}

// calcAccumulator carries the two schedule-wide sums used only in
// annuity-plus-daily mode. A fresh accumulator starts every Calc pass.
type calcAccumulator struct {
	globalDiff           decimal.Decimal
	firstCapitalPossible decimal.Decimal
}

// takeFirstCapitalPossible drains the parked balance.
func (a *calcAccumulator) takeFirstCapitalPossible() decimal.Decimal {
	out := a.firstCapitalPossible
	a.firstCapitalPossible = decimal.Zero
	return out
}

// =============================================================================
// TICK DECOMPOSITION
// =============================================================================

// tick is a group of days within a period sharing the same rate and
// engagement. Percentage is the group's share of the period span.
type tick struct {
	rate       decimal.Decimal
	engagement decimal.Decimal
	days       int
	percentage decimal.Decimal
}

// ticksBetween evaluates (rate, engagement) for every day of [first, last]
// and groups days by identical pairs, ordered by first occurrence. The
// percentages are renormalized so they sum to exactly one.
func ticksBetween(first, last Date, rates *RateTimeline, engagements *EngagementTimeline) []tick {
	span := DaysBetween(first, last) + 1

	var ticks []tick
	index := map[string]int{}

	for day := 0; day < span; day++ {
		date := first.AddDays(day)
		rate := rates.RateAt(date)
		engagement := engagements.EngagementAt(date)

		key := rate.String() + "|" + engagement.String()
		if i, ok := index[key]; ok {
			ticks[i].days++
			continue
		}
		index[key] = len(ticks)
		ticks = append(ticks, tick{rate: rate, engagement: engagement, days: 1})
	}

	spanDec := decimal.NewFromInt(int64(span))
	sum := decimal.Zero
	for i := range ticks {
		ticks[i].percentage = decimal.NewFromInt(int64(ticks[i].days)).Div(spanDec)
		sum = sum.Add(ticks[i].percentage)
	}

	// Division truncation can leave the shares a hair away from one; the
	// chronologically last tick absorbs the residual.
	one := decimal.New(1, 0)
	if !sum.Equal(one) {
		lastTick := &ticks[len(ticks)-1]
		lastTick.percentage = lastTick.percentage.Add(one.Sub(sum))
	}

	return ticks
}

// =============================================================================
// PER-INSTALLMENT COMPUTATION
// =============================================================================

// compute recalculates interest and capital from scratch. Calling it twice
// with an unchanged ledger yields identical results.
func (i *Installment) compute(ctx *calcContext, acc *calcAccumulator) {
	i.interest = decimal.Zero
	i.capital = decimal.Zero

	period := i.Period
	length := decimal.NewFromInt(int64(period.Length))
	daysInYear := decimal.NewFromInt(int64(period.DaysInYear()))

	for _, tk := range ticksBetween(period.FirstDay, period.LastDay, ctx.rates, ctx.engagements) {
		if ctx.style == StyleAnnuity && ctx.calcDaily {
			nonDaily := tk.engagement.
				Mul(tk.rate).Mul(period.FractionOfYear).Mul(tk.percentage).
				Round(2)
			daily := tk.engagement.
				Mul(tk.rate.Div(daysInYear)).Mul(length).Mul(tk.percentage).
				Round(2)
			diff := nonDaily.Sub(daily)

			acc.globalDiff = acc.globalDiff.Add(diff)
			i.interest = i.interest.Add(daily)

			if ctx.firstRepayment.IsZero() || period.LastDay.After(ctx.firstRepayment) {
				released := acc.takeFirstCapitalPossible()
				i.capital = i.capital.Add(diff.Add(released))
				i.interest = i.interest.Sub(released)
			} else {
				// Still inside the grace period: no capital exists yet to
				// offset the convention gap against.
				acc.firstCapitalPossible = acc.firstCapitalPossible.Add(diff)
			}
			continue
		}

		if ctx.calcDaily {
			i.interest = i.interest.Add(
				tk.engagement.Mul(tk.rate.Div(daysInYear)).Mul(length).Mul(tk.percentage))
		} else {
			i.interest = i.interest.Add(
				tk.engagement.Mul(tk.rate).Mul(period.FractionOfYear).Mul(tk.percentage))
		}
	}

	// Capital: every repayment dated inside the period, corrections included.
	for _, f := range ctx.ledger.All() {
		if f.Repayment.IsZero() {
			continue
		}
		if period.Contains(f.Date) {
			i.capital = i.capital.Add(f.Repayment)
		}
	}

	// The final installment absorbs the accumulated convention drift.
	if period.LastDay.Equal(ctx.scheduleEnd) && !acc.globalDiff.IsZero() {
		i.capital = i.capital.Sub(acc.globalDiff)
	}
}

// =============================================================================
// INSTALLMENT COLLECTION
// =============================================================================

// InstallmentCollection is the ordered set of installments covering
// [start, end] contiguously, orders 1..N, built once at schedule
// construction and never rebuilt.
type InstallmentCollection struct {
	items []*Installment
}

// newInstallmentCollection walks calendar segments from the schedule start,
// one granularity step at a time, until the window is exhausted. The walk is
// guarded by window containment, so period construction cannot fail.
func newInstallmentCollection(start, end Date, g Granularity) (*InstallmentCollection, error) {
	c := &InstallmentCollection{}

	cursor := start
	for cursor.BeforeOrEqual(end) {
		period, err := newCalendarPeriod(start, end, g, cursor)
		if err != nil {
			return nil, err
		}
		c.items = append(c.items, &Installment{
			Period: period,
			Order:  len(c.items) + 1,
		})
		// The next segment starts the day after this one ends. Stepping by
		// day offsets instead of AddMonths keeps the segmentation contiguous
		// even when the schedule starts late in a month.
		cursor = period.LastDay.AddDays(1)
	}

	return c, nil
}

// All returns the installments in order.
func (c *InstallmentCollection) All() []*Installment {
	return c.items
}

func (c *InstallmentCollection) Len() int {
	return len(c.items)
}

// Last returns the final installment, or nil for an empty collection.
func (c *InstallmentCollection) Last() *Installment {
	if len(c.items) == 0 {
		return nil
	}
	return c.items[len(c.items)-1]
}

// ForDate returns the installment whose period covers the date.
func (c *InstallmentCollection) ForDate(date Date) (*Installment, error) {
	for _, inst := range c.items {
		if inst.Period.Contains(date) {
			return inst, nil
		}
	}
	return nil, &InstallmentNotFoundError{Date: date}
}

// SumOfInterest totals the rounded per-installment interest.
func (c *InstallmentCollection) SumOfInterest() decimal.Decimal {
	sum := decimal.Zero
	for _, inst := range c.items {
		sum = sum.Add(inst.Interest())
	}
	return sum
}

// SumOfCapital totals the rounded per-installment capital.
func (c *InstallmentCollection) SumOfCapital() decimal.Decimal {
	sum := decimal.Zero
	for _, inst := range c.items {
		sum = sum.Add(inst.Capital())
	}
	return sum
}
