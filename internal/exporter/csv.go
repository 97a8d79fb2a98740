package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"pulseapi/internal/analytics"
)

// StreamCSV writes headers and records to w. A UTF-8 BOM is prepended so
// Excel opens the file with the right encoding.
func StreamCSV(w io.Writer, headers []string, records [][]string) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	for i, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// StateTotalsCSV streams a state rollup table as CSV.
func StateTotalsCSV(w io.Writer, totals []analytics.StateTotal) error {
	records := make([][]string, 0, len(totals))
	for _, t := range totals {
		records = append(records, []string{
			t.State,
			strconv.FormatInt(t.Count, 10),
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
		})
	}
	return StreamCSV(w, []string{"State", "Count", "Amount"}, records)
}
