package render

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/warp/repayment-engine/schedule"
)

// csvHeader is stable: downstream imports key on these column names.
var csvHeader = []string{
	"number", "period", "start", "stop", "length", "interests", "capital", "whole",
}

// CSV writes one row per installment to w.
func CSV(s *schedule.Schedule, w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, inst := range s.Installments().All() {
		p := inst.Period
		record := []string{
			strconv.Itoa(inst.Order),
			p.Label,
			p.FirstDay.String(),
			p.LastDay.String(),
			strconv.Itoa(p.Length),
			inst.Interest().StringFixed(2),
			inst.Capital().StringFixed(2),
			inst.Whole().StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row %d: %w", inst.Order, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteCSVFile writes the CSV table to a file, replacing any previous
// content.
func WriteCSVFile(s *schedule.Schedule, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv file: %w", err)
	}
	if err := CSV(s, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing csv file: %w", err)
	}
	return nil
}
