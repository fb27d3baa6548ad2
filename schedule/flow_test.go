package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/repayment-engine/schedule"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// dec is shared by every test file in this package.

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) schedule.Date {
	return schedule.NewDate(y, m, d)
}

// =============================================================================
// FLOW LEDGER TESTS
// =============================================================================

func TestAddPayment_ZeroAmount_IsNoOp(t *testing.T) {
	// GIVEN: An empty ledger
	// WHEN: Posting a zero payment
	// THEN: No flow is created

	ledger := schedule.NewFlowLedger()
	if err := ledger.AddPayment(day(2020, time.March, 1), decimal.Zero); err != nil {
		t.Fatalf("zero payment should be a no-op, got %v", err)
	}
	if ledger.Len() != 0 {
		t.Errorf("ledger has %d flows, want 0", ledger.Len())
	}
}

func TestAddPayment_Negative_Rejected(t *testing.T) {
	ledger := schedule.NewFlowLedger()
	err := ledger.AddPayment(day(2020, time.March, 1), dec("-5"))
	if !errors.Is(err, schedule.ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}
	if ledger.Len() != 0 {
		t.Errorf("failed posting must leave the ledger unchanged")
	}
}

func TestAddRepayment_Negative_IsCorrection(t *testing.T) {
	// Negative repayments are corrections, not errors.
	ledger := schedule.NewFlowLedger()
	if err := ledger.AddRepayment(day(2020, time.March, 1), dec("-5")); err != nil {
		t.Fatalf("negative repayment should succeed, got %v", err)
	}
	if !ledger.SumOfRepayments().Equal(dec("-5")) {
		t.Errorf("sum of repayments = %s, want -5", ledger.SumOfRepayments())
	}
}

func TestAdd_SameDate_Accumulates(t *testing.T) {
	// GIVEN: Two payments and a repayment on the same day
	// THEN: One flow holds the accumulated amounts

	ledger := schedule.NewFlowLedger()
	d := day(2020, time.March, 1)

	if err := ledger.AddPayment(d, dec("100")); err != nil {
		t.Fatal(err)
	}
	if err := ledger.AddPayment(d, dec("50")); err != nil {
		t.Fatal(err)
	}
	if err := ledger.AddRepayment(d, dec("30")); err != nil {
		t.Fatal(err)
	}

	if ledger.Len() != 1 {
		t.Fatalf("ledger has %d flows, want 1", ledger.Len())
	}
	flow := ledger.All()[0]
	if !flow.Payment.Equal(dec("150")) {
		t.Errorf("payment = %s, want 150", flow.Payment)
	}
	if !flow.Repayment.Equal(dec("30")) {
		t.Errorf("repayment = %s, want 30", flow.Repayment)
	}
	if !flow.Balance().Equal(dec("120")) {
		t.Errorf("balance = %s, want 120", flow.Balance())
	}
}

func TestSetRepayment_Overwrites(t *testing.T) {
	ledger := schedule.NewFlowLedger()
	d := day(2020, time.March, 1)

	if err := ledger.AddRepayment(d, dec("30")); err != nil {
		t.Fatal(err)
	}
	if err := ledger.SetRepayment(d, dec("7")); err != nil {
		t.Fatal(err)
	}

	if !ledger.All()[0].Repayment.Equal(dec("7")) {
		t.Errorf("repayment = %s, want 7 after overwrite", ledger.All()[0].Repayment)
	}
}

func TestLedger_KeepsAscendingOrder(t *testing.T) {
	// GIVEN: Flows posted out of date order
	// THEN: Iteration is ascending by date

	ledger := schedule.NewFlowLedger()
	dates := []schedule.Date{
		day(2020, time.June, 1),
		day(2020, time.January, 1),
		day(2020, time.March, 15),
	}
	for _, d := range dates {
		if err := ledger.AddPayment(d, dec("1")); err != nil {
			t.Fatal(err)
		}
	}

	all := ledger.All()
	for i := 1; i < len(all); i++ {
		if !all[i-1].Date.Before(all[i].Date) {
			t.Fatalf("ledger out of order at %d: %s !< %s", i, all[i-1].Date, all[i].Date)
		}
	}
}

func TestLedger_Sums(t *testing.T) {
	ledger := schedule.NewFlowLedger()
	if err := ledger.AddPayment(day(2020, time.January, 1), dec("100.50")); err != nil {
		t.Fatal(err)
	}
	if err := ledger.AddPayment(day(2020, time.February, 1), dec("200.25")); err != nil {
		t.Fatal(err)
	}
	if err := ledger.AddRepayment(day(2020, time.March, 1), dec("50.75")); err != nil {
		t.Fatal(err)
	}

	if !ledger.SumOfPayments().Equal(dec("300.75")) {
		t.Errorf("sum of payments = %s, want 300.75", ledger.SumOfPayments())
	}
	if !ledger.SumOfRepayments().Equal(dec("50.75")) {
		t.Errorf("sum of repayments = %s, want 50.75", ledger.SumOfRepayments())
	}
}
