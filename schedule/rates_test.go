package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/repayment-engine/schedule"
)

// =============================================================================
// RATE TIMELINE TESTS
// =============================================================================

func TestAddRate_Negative_Rejected(t *testing.T) {
	rates := schedule.NewRateTimeline()
	err := rates.Add(day(2020, time.January, 1), dec("-0.01"))
	if !errors.Is(err, schedule.ErrNegativeRate) {
		t.Fatalf("expected ErrNegativeRate, got %v", err)
	}
}

func TestAddRate_Zero_IsNoOp(t *testing.T) {
	// Zero is the implicit default before any entry; it is never stored.
	rates := schedule.NewRateTimeline()
	if err := rates.Add(day(2020, time.January, 1), dec("0")); err != nil {
		t.Fatalf("zero rate should be a no-op, got %v", err)
	}
	if len(rates.All()) != 0 {
		t.Errorf("timeline has %d entries, want 0", len(rates.All()))
	}
}

func TestRateAt_RightContinuousStepFunction(t *testing.T) {
	// GIVEN: 2% from Feb 1 and 4% from Jun 1
	// THEN: rateAt is 0 before Feb 1, 2% in [Feb 1, May 31], 4% afterwards

	rates := schedule.NewRateTimeline()
	if err := rates.Add(day(2020, time.February, 1), dec("0.02")); err != nil {
		t.Fatal(err)
	}
	if err := rates.Add(day(2020, time.June, 1), dec("0.04")); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		at   schedule.Date
		want string
	}{
		{day(2020, time.January, 31), "0"},
		{day(2020, time.February, 1), "0.02"},
		{day(2020, time.May, 31), "0.02"},
		{day(2020, time.June, 1), "0.04"},
		{day(2021, time.June, 1), "0.04"},
	}
	for _, c := range cases {
		if got := rates.RateAt(c.at); !got.Equal(dec(c.want)) {
			t.Errorf("rateAt(%s) = %s, want %s", c.at, got, c.want)
		}
	}
}

func TestAddRate_LastWriteWinsPerDate(t *testing.T) {
	rates := schedule.NewRateTimeline()
	d := day(2020, time.February, 1)
	if err := rates.Add(d, dec("0.02")); err != nil {
		t.Fatal(err)
	}
	if err := rates.Add(d, dec("0.03")); err != nil {
		t.Fatal(err)
	}

	if len(rates.All()) != 1 {
		t.Fatalf("timeline has %d entries, want 1", len(rates.All()))
	}
	if got := rates.RateAt(d); !got.Equal(dec("0.03")) {
		t.Errorf("rateAt = %s, want 0.03", got)
	}
}

func TestAddRate_OutOfOrder_KeptSorted(t *testing.T) {
	rates := schedule.NewRateTimeline()
	if err := rates.Add(day(2020, time.June, 1), dec("0.04")); err != nil {
		t.Fatal(err)
	}
	if err := rates.Add(day(2020, time.February, 1), dec("0.02")); err != nil {
		t.Fatal(err)
	}

	all := rates.All()
	if len(all) != 2 || !all[0].Date.Before(all[1].Date) {
		t.Fatalf("entries not sorted ascending: %+v", all)
	}
	if got := rates.RateAt(day(2020, time.March, 1)); !got.Equal(dec("0.02")) {
		t.Errorf("rateAt(March) = %s, want 0.02", got)
	}
}
