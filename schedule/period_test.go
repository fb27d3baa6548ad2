package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/repayment-engine/schedule"
)

// =============================================================================
// GRANULARITY TESTS
// =============================================================================

func TestParseGranularity_Selectors(t *testing.T) {
	cases := []struct {
		in   string
		want schedule.Granularity
	}{
		{"monthly", schedule.Monthly},
		{"quarterly", schedule.Quarterly},
		{"yearly", schedule.Yearly},
	}
	for _, c := range cases {
		got, err := schedule.ParseGranularity(c.in)
		if err != nil {
			t.Fatalf("ParseGranularity(%q): unexpected error %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseGranularity(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseGranularity_Unknown(t *testing.T) {
	_, err := schedule.ParseGranularity("weekly")
	if !errors.Is(err, schedule.ErrInvalidGranularity) {
		t.Fatalf("expected ErrInvalidGranularity, got %v", err)
	}
}

func TestGranularity_PeriodsPerYear(t *testing.T) {
	if got := schedule.Monthly.PeriodsPerYear(); got != 12 {
		t.Errorf("monthly periods per year = %d, want 12", got)
	}
	if got := schedule.Quarterly.PeriodsPerYear(); got != 4 {
		t.Errorf("quarterly periods per year = %d, want 4", got)
	}
	if got := schedule.Yearly.PeriodsPerYear(); got != 1 {
		t.Errorf("yearly periods per year = %d, want 1", got)
	}
}

// =============================================================================
// CALENDAR SEGMENTATION TESTS
// =============================================================================

// Segmentation is exercised through a schedule: installments expose their
// clipped calendar periods.
func calendarYear2020(t *testing.T, g schedule.Granularity) *schedule.Schedule {
	t.Helper()
	s, err := schedule.New(
		dec("120000"), dec("0.02"),
		schedule.NewDate(2019, time.December, 31),
		schedule.NewDate(2020, time.December, 31),
		g,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestMonthlyPeriods_FullCalendarYear(t *testing.T) {
	// GIVEN: A schedule covering exactly 2020
	// THEN: Twelve full months, labelled 2020M01..2020M12, fraction 1 each

	s := calendarYear2020(t, schedule.Monthly)
	all := s.Installments().All()

	if len(all) != 12 {
		t.Fatalf("expected 12 installments, got %d", len(all))
	}

	feb := all[1].Period
	if feb.Label != "2020M02" {
		t.Errorf("label = %q, want 2020M02", feb.Label)
	}
	if !feb.FirstDay.Equal(schedule.NewDate(2020, time.February, 1)) {
		t.Errorf("first day = %s", feb.FirstDay)
	}
	if !feb.LastDay.Equal(schedule.NewDate(2020, time.February, 29)) {
		t.Errorf("last day = %s (2020 is a leap year)", feb.LastDay)
	}
	if feb.Length != 29 {
		t.Errorf("length = %d, want 29", feb.Length)
	}
	if !feb.FractionOfPeriod.Equal(dec("1")) {
		t.Errorf("fraction of period = %s, want 1", feb.FractionOfPeriod)
	}
}

func TestQuarterlyPeriods_Labels(t *testing.T) {
	s := calendarYear2020(t, schedule.Quarterly)
	all := s.Installments().All()

	if len(all) != 4 {
		t.Fatalf("expected 4 installments, got %d", len(all))
	}
	want := []string{"2020Q1", "2020Q2", "2020Q3", "2020Q4"}
	for i, inst := range all {
		if inst.Period.Label != want[i] {
			t.Errorf("quarter %d label = %q, want %q", i+1, inst.Period.Label, want[i])
		}
	}
	q2 := all[1].Period
	if !q2.FirstDay.Equal(schedule.NewDate(2020, time.April, 1)) ||
		!q2.LastDay.Equal(schedule.NewDate(2020, time.June, 30)) {
		t.Errorf("Q2 bounds = [%s, %s]", q2.FirstDay, q2.LastDay)
	}
}

func TestYearlyPeriod_Label(t *testing.T) {
	s := calendarYear2020(t, schedule.Yearly)
	all := s.Installments().All()

	if len(all) != 1 {
		t.Fatalf("expected 1 installment, got %d", len(all))
	}
	if all[0].Period.Label != "2020Y" {
		t.Errorf("label = %q, want 2020Y", all[0].Period.Label)
	}
	if all[0].Period.Length != 366 {
		t.Errorf("length = %d, want 366", all[0].Period.Length)
	}
}

func TestClippedFirstPeriod_FractionBelowOne(t *testing.T) {
	// GIVEN: Funding on Jan 14, so the schedule starts Jan 15
	// THEN: The first installment is the clipped rest of January with
	//       fraction 16/30 of the full month

	s, err := schedule.New(
		dec("120000"), dec("0.02"),
		schedule.NewDate(2021, time.January, 14),
		schedule.NewDate(2021, time.December, 31),
		schedule.Monthly,
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first := s.Installments().All()[0].Period
	if !first.FirstDay.Equal(schedule.NewDate(2021, time.January, 15)) {
		t.Errorf("first day = %s, want 2021-01-15", first.FirstDay)
	}
	if first.Length != 17 {
		t.Errorf("length = %d, want 17", first.Length)
	}
	want := dec("16").Div(dec("30"))
	if !first.FractionOfPeriod.Equal(want) {
		t.Errorf("fraction of period = %s, want %s", first.FractionOfPeriod, want)
	}
}

func TestDaysInYear_LeapRule(t *testing.T) {
	if got := schedule.DaysInYear(2020); got != 366 {
		t.Errorf("2020 = %d, want 366", got)
	}
	if got := schedule.DaysInYear(2021); got != 365 {
		t.Errorf("2021 = %d, want 365", got)
	}
	if got := schedule.DaysInYear(1900); got != 365 {
		t.Errorf("1900 = %d, want 365 (century rule)", got)
	}
	if got := schedule.DaysInYear(2000); got != 366 {
		t.Errorf("2000 = %d, want 366 (400-year rule)", got)
	}
}
