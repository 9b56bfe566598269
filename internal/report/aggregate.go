// Package report assembles the canonical check register table from a
// batch result and serializes it as a styled XLSX workbook or a CSV
// stream. The table has nine logical columns: sequence number, payer,
// date, amount, bank, check number, account, routing and claim.
package report

import "checkparser/pkg/models"

// Headers are the report column titles, shared by both output formats.
var Headers = []string{"#", "Payer", "Date", "Amount", "Bank", "Check Number", "Account #", "Routing #", "Claim #"}

// Aggregate filters a batch result down to its successful records in
// original index order and computes the running total of their amounts in
// cents. The total is recomputed on every call, never cached; a batch with
// zero successes yields an empty slice and a zero total.
func Aggregate(batch models.BatchResult) ([]models.IndexedRecord, int64) {
	records := batch.Succeeded()
	var totalCents int64
	for _, r := range records {
		totalCents += r.AmountCents
	}
	return records, totalCents
}
