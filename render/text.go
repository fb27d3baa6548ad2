/*
Package render projects a computed schedule into output formats.

PURPOSE:
  The engine produces installments; this package turns them into artifacts
  people and spreadsheets consume: a fixed-width text report and a CSV
  table. Rendering never mutates the schedule - callers run Calc first.

FORMATS:
  - Text: settings block, funded payments, rate timeline, bordered
    installment table, totals. Amounts use a backtick thousands separator
    so columns stay machine-greppable without ambiguity against the
    comma-separated CSV.
  - CSV: one row per installment, headers stable for downstream imports.
*/
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/repayment-engine/schedule"
)

const tableRule = "|-----|---------|------------|------------|------|---------------|---------------|---------------|"

// Text renders the full fixed-width report.
func Text(s *schedule.Schedule) string {
	var b strings.Builder

	b.WriteString("\n\n")
	b.WriteString("Settings:\n")
	fmt.Fprintf(&b, "  - first day:   %s\n", s.Start())
	fmt.Fprintf(&b, "  - grace till:  %s\n", graceLabel(s.FirstRepaymentDate()))
	fmt.Fprintf(&b, "  - last day:    %s\n", s.End())
	fmt.Fprintf(&b, "  - repayments:  %s\n", s.Style())
	fmt.Fprintf(&b, "  - daily calcs: %s\n", yesNo(s.IsCalcDaily()))
	fmt.Fprintf(&b, "  - period type: %s\n", s.Granularity())

	b.WriteString("\nPayments:\n")
	for _, f := range s.Flows() {
		if f.Payment.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "  - %s: %13s\n", f.Date, formatMoney(f.Payment))
	}

	b.WriteString("\nInterests rates:\n")
	for _, r := range s.Rates() {
		percent := r.Rate.Mul(decimal.NewFromInt(100))
		fmt.Fprintf(&b, "  - %s: %5s%%\n", r.Date, formatMoney(percent))
	}

	b.WriteString("\n")
	b.WriteString(tableRule + "\n")
	b.WriteString("| no  | period  | start      |     end    | days |   interests   |    capital    |     whole     |\n")
	b.WriteString(tableRule + "\n")

	for _, inst := range s.Installments().All() {
		p := inst.Period
		fmt.Fprintf(&b, "| %3d | %-7s | %s | %s | %4d | %13s | %13s | %13s |\n",
			inst.Order, p.Label, p.FirstDay, p.LastDay, p.Length,
			formatMoney(inst.Interest()),
			formatMoney(inst.Capital()),
			formatMoney(inst.Whole()))
	}

	b.WriteString(tableRule + "\n\n")
	b.WriteString("Sum of:\n")
	fmt.Fprintf(&b, "  - capital:   %13s\n", formatMoney(s.Installments().SumOfCapital()))
	fmt.Fprintf(&b, "  - interests: %13s\n", formatMoney(s.Installments().SumOfInterest()))
	b.WriteString("\n\n")

	return b.String()
}

// WriteTextFile writes the text report to a file, replacing any previous
// content.
func WriteTextFile(s *schedule.Schedule, path string) error {
	if err := os.WriteFile(path, []byte(Text(s)), 0o644); err != nil {
		return fmt.Errorf("writing text report: %w", err)
	}
	return nil
}

// formatMoney renders a decimal with two fixed places and a backtick as the
// thousands separator: 120000 -> 120`000.00.
func formatMoney(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}

	dot := strings.IndexByte(fixed, '.')
	whole, frac := fixed[:dot], fixed[dot:]

	var b strings.Builder
	b.WriteString(sign)
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte('`')
		}
		b.WriteRune(c)
	}
	b.WriteString(frac)
	return b.String()
}

func graceLabel(d schedule.Date) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
