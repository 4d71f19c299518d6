// Package export renders account records as CSV, XLSX or JSON.
package export

import (
	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// Derived columns appended after the vocabulary fields.
const (
	HeaderSection       = "Section"
	HeaderPaymentStatus = "Payment Status"
)

// Headers returns the column headers in output order.
func Headers() []string {
	out := make([]string, 0, len(report.Vocabulary)+2)
	for _, spec := range report.Vocabulary {
		out = append(out, spec.Header)
	}
	return append(out, HeaderSection, HeaderPaymentStatus)
}

// Row returns a's cells in the order of Headers.
func Row(a report.Account) []string {
	return append(a.Values(), string(a.Section), a.PaymentStatus)
}
