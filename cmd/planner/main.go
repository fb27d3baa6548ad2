/*
main.go - Command-line schedule planner

PURPOSE:
  Computes one repayment schedule from flags and prints the fixed-width
  report to stdout. Optionally writes text/CSV files and archives the run.

COMMAND-LINE FLAGS:
  -principal    Funded amount, decimal string (required)
  -rate         Annual interest rate, e.g. 0.02 (required)
  -funding      Funding date YYYY-MM-DD; accrual starts the day after
  -end          Last schedule day YYYY-MM-DD
  -granularity  monthly, quarterly or yearly (default: monthly)
  -style        manual, linear, annuity or balloon (default: linear)
  -grace        First repayment date YYYY-MM-DD (optional)
  -daily        Use the daily accrual convention
  -places       Annuity amount rounding precision (default: 2)
  -out          Write the text report to this file
  -csv          Write the CSV table to this file
  -archive      Archive the run into this SQLite database

EXAMPLES:
  # Print a linear schedule
  ./planner -principal=120000 -rate=0.02 -funding=2019-12-31 -end=2020-12-31

  # Annuity with a rate change, archived
  ./planner -principal=120000 -rate=0.02 -funding=2019-12-31 -end=2020-12-31 \
      -style=annuity -archive=./schedules.db

SEE ALSO:
  - schedule: The engine
  - render: Text and CSV projections
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"github.com/warp/repayment-engine/render"
	"github.com/warp/repayment-engine/schedule"
	"github.com/warp/repayment-engine/store/sqlite"
)

func main() {
	// Flags
	principalArg := flag.String("principal", "", "funded amount (decimal string)")
	rateArg := flag.String("rate", "", "annual interest rate, e.g. 0.02")
	fundingArg := flag.String("funding", "", "funding date YYYY-MM-DD")
	endArg := flag.String("end", "", "last schedule day YYYY-MM-DD")
	granularityArg := flag.String("granularity", "monthly", "monthly, quarterly or yearly")
	styleArg := flag.String("style", "linear", "manual, linear, annuity or balloon")
	graceArg := flag.String("grace", "", "first repayment date YYYY-MM-DD")
	daily := flag.Bool("daily", false, "use the daily accrual convention")
	places := flag.Int("places", 2, "annuity amount rounding precision")
	outPath := flag.String("out", "", "write the text report to this file")
	csvPath := flag.String("csv", "", "write the CSV table to this file")
	archivePath := flag.String("archive", "", "archive the run into this SQLite database")
	flag.Parse()

	s, err := buildSchedule(*principalArg, *rateArg, *fundingArg, *endArg,
		*granularityArg, *styleArg, *graceArg, *daily, int32(*places))
	if err != nil {
		log.Fatalf("Invalid schedule: %v", err)
	}
	s.Calc()

	fmt.Print(render.Text(s))

	if *outPath != "" {
		if err := render.WriteTextFile(s, *outPath); err != nil {
			log.Fatalf("Failed to write text report: %v", err)
		}
		log.Printf("Text report written to %s", *outPath)
	}
	if *csvPath != "" {
		if err := render.WriteCSVFile(s, *csvPath); err != nil {
			log.Fatalf("Failed to write CSV table: %v", err)
		}
		log.Printf("CSV table written to %s", *csvPath)
	}

	if *archivePath != "" {
		archive, err := sqlite.New(*archivePath)
		if err != nil {
			log.Fatalf("Failed to open archive: %v", err)
		}
		defer archive.Close()

		id, err := archive.SaveRun(context.Background(), s)
		if err != nil {
			log.Fatalf("Failed to archive run: %v", err)
		}
		log.Printf("Archived as run %d in %s", id, *archivePath)
	}
}

func buildSchedule(principalArg, rateArg, fundingArg, endArg, granularityArg,
	styleArg, graceArg string, daily bool, places int32) (*schedule.Schedule, error) {

	principal, err := decimal.NewFromString(principalArg)
	if err != nil {
		return nil, fmt.Errorf("-principal %q: %w", principalArg, err)
	}
	rate, err := decimal.NewFromString(rateArg)
	if err != nil {
		return nil, fmt.Errorf("-rate %q: %w", rateArg, err)
	}
	funding, err := schedule.ParseDate(fundingArg)
	if err != nil {
		return nil, fmt.Errorf("-funding: %w", err)
	}
	end, err := schedule.ParseDate(endArg)
	if err != nil {
		return nil, fmt.Errorf("-end: %w", err)
	}
	granularity, err := schedule.ParseGranularity(granularityArg)
	if err != nil {
		return nil, err
	}

	s, err := schedule.New(principal, rate, funding, end, granularity)
	if err != nil {
		return nil, err
	}

	if graceArg != "" {
		grace, err := schedule.ParseDate(graceArg)
		if err != nil {
			return nil, fmt.Errorf("-grace: %w", err)
		}
		if err := s.SetFirstRepaymentDate(grace); err != nil {
			return nil, err
		}
	}
	s.SetCalcDaily(daily)

	switch schedule.Style(styleArg) {
	case schedule.StyleManual:
	case schedule.StyleLinear:
		err = s.SetLinearStyle()
	case schedule.StyleAnnuity:
		err = s.SetAnnuityStyle(places)
	case schedule.StyleBalloon:
		err = s.SetBalloonStyle()
	default:
		return nil, fmt.Errorf("unknown -style %q", styleArg)
	}
	if err != nil {
		return nil, err
	}

	return s, nil
}
