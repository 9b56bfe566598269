package models

// RawDocument is one uploaded payload with its declared MIME type.
// It is owned by the caller for the duration of a single pipeline run.
type RawDocument struct {
	Name     string // source file name, used in logs and error messages
	MIMEType string // application/pdf, image/png, image/jpeg, image/tiff
	Data     []byte
}

// IsPDF reports whether the document should be rasterized page by page.
func (d RawDocument) IsPDF() bool {
	return d.MIMEType == "application/pdf"
}

// PageImage is one rasterized check image ready for extraction.
// Index is the 1-based position in the flattened page sequence across
// all documents of the batch, assigned at decomposition time.
type PageImage struct {
	Index      int
	SourceName string
	MediaType  string // image/png after normalization, declared type on raw fallback
	Data       []byte
}

// CheckRecord is the normalized eight-field representation of one parsed check.
//
// Amount is stored as cents to keep two-decimal precision exact through
// aggregation. CheckNumber stays a string so leading zeros survive.
type CheckRecord struct {
	Payer       string
	Date        string // MM/DD/YYYY
	AmountCents int64
	Bank        string
	CheckNumber string
	Account     string
	Routing     string
	Claim       string
}

// Amount returns the dollar amount as a float with cent precision.
func (r CheckRecord) Amount() float64 {
	return float64(r.AmountCents) / 100
}

// PageOutcome is the result slot for one page: either a record or the
// error that killed that page. Exactly one of Record and Err is set.
type PageOutcome struct {
	Index  int
	Record *CheckRecord
	Err    error
}

// BatchResult is the ordered outcome of one pipeline run. Pages is in
// input order; the outcome at position i always has Index i+1 regardless
// of processing order or failure pattern. DocumentErrors holds
// document-level decomposition failures, which occupy no page slot.
type BatchResult struct {
	Pages          []PageOutcome
	DocumentErrors []error
}

// Succeeded returns the successful records in index order.
func (b BatchResult) Succeeded() []IndexedRecord {
	var out []IndexedRecord
	seq := 0
	for _, p := range b.Pages {
		if p.Err == nil && p.Record != nil {
			seq++
			out = append(out, IndexedRecord{Seq: seq, CheckRecord: *p.Record})
		}
	}
	return out
}

// Failed returns the outcomes that carry an error, in index order.
func (b BatchResult) Failed() []PageOutcome {
	var out []PageOutcome
	for _, p := range b.Pages {
		if p.Err != nil {
			out = append(out, p)
		}
	}
	return out
}

// IndexedRecord is a successful record with its 1-based report sequence
// number (position among successes, not the page index).
type IndexedRecord struct {
	Seq int
	CheckRecord
}
