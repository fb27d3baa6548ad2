package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CALENDAR PERIOD - One schedule-clipped calendar segment
// =============================================================================

// CalendarPeriod is the concrete calendar segment (whole month, quarter or
// year) containing some date, clipped to the schedule window. A period at
// the edge of the schedule can be shorter than its full calendar segment;
// FractionOfPeriod records how much of the full segment survives clipping.
type CalendarPeriod struct {
	// Label names the segment: 2020M02, 2020Q1, 2020Y.
	Label string

	// FirstDay and LastDay bound the clipped segment, inclusive.
	FirstDay Date
	LastDay  Date

	// Length is the number of days in the clipped segment, inclusive.
	Length int

	// FractionOfPeriod is clipped span over full calendar span, as interval
	// counts. A full month is 1; a month clipped to its second half is
	// roughly one half.
	FractionOfPeriod decimal.Decimal

	// FractionOfYear is the accrual weight of the full segment: 1/12, 1/4, 1.
	FractionOfYear decimal.Decimal
}

// newCalendarPeriod locates the full calendar segment containing anyDate and
// clips it to [start, end]. It returns ErrPeriodOutOfRange when the segment
// lies wholly outside the window.
func newCalendarPeriod(start, end Date, g Granularity, anyDate Date) (CalendarPeriod, error) {
	if !g.valid() {
		return CalendarPeriod{}, fmt.Errorf("%w: %d", ErrInvalidGranularity, int(g))
	}

	year := anyDate.Year()
	var wholeFirst, wholeLast Date
	var label string

	switch g {
	case Monthly:
		month := anyDate.Month()
		wholeFirst = NewDate(year, month, 1)
		wholeLast = lastDayOfMonth(year, month)
		label = fmt.Sprintf("%04dM%02d", year, int(month))

	case Quarterly:
		firstMonth := time.Month((int(anyDate.Month())-1)/3*3 + 1)
		wholeFirst = NewDate(year, firstMonth, 1)
		wholeLast = lastDayOfMonth(year, firstMonth+2)
		label = fmt.Sprintf("%04dQ%d", year, (int(firstMonth)-1)/3+1)

	case Yearly:
		wholeFirst = NewDate(year, time.January, 1)
		wholeLast = NewDate(year, time.December, 31)
		label = fmt.Sprintf("%04dY", year)
	}

	first := MaxDate(wholeFirst, start)
	last := MinDate(wholeLast, end)
	if first.After(last) {
		return CalendarPeriod{}, &OutOfRangeError{Date: anyDate, Start: start, End: end}
	}

	return CalendarPeriod{
		Label:    label,
		FirstDay: first,
		LastDay:  last,
		Length:   DaysBetween(first, last) + 1,
		FractionOfPeriod: decimal.NewFromInt(int64(DaysBetween(first, last))).
			Div(decimal.NewFromInt(int64(DaysBetween(wholeFirst, wholeLast)))),
		FractionOfYear: g.FractionOfYear(),
	}, nil
}

// Contains reports whether the date falls inside the clipped segment.
func (p CalendarPeriod) Contains(d Date) bool {
	return d.AfterOrEqual(p.FirstDay) && d.BeforeOrEqual(p.LastDay)
}

// DaysInYear returns the day-count denominator for the daily accrual
// convention, taken from the year of the segment's first day.
func (p CalendarPeriod) DaysInYear() int {
	return DaysInYear(p.FirstDay.Year())
}

func (p CalendarPeriod) String() string {
	return fmt.Sprintf("%s [%s, %s]", p.Label, p.FirstDay, p.LastDay)
}
