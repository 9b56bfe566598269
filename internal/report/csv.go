package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"checkparser/pkg/models"
)

// WriteCSV serializes records as a delimited text report: one header row,
// one row per record with the amount formatted to exactly two decimal
// places, and a trailing total row carrying "TOTAL" in the date column and
// the sum in the amount column.
func WriteCSV(records []models.IndexedRecord, totalCents int64) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(Headers); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.Seq),
			r.Payer,
			r.Date,
			fmt.Sprintf("%.2f", r.Amount()),
			r.Bank,
			r.CheckNumber,
			r.Account,
			r.Routing,
			r.Claim,
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", r.Seq, err)
		}
	}

	totalRow := []string{"", "", "TOTAL", fmt.Sprintf("%.2f", float64(totalCents)/100), "", "", "", "", ""}
	if err := w.Write(totalRow); err != nil {
		return nil, fmt.Errorf("write csv total row: %w", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
