package export

import (
	"encoding/csv"
	"io"

	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// WriteCSV writes a header row followed by one row per account.
func WriteCSV(w io.Writer, accounts []report.Account) error {
	if len(accounts) == 0 {
		return report.ErrNoAccounts
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers()); err != nil {
		return err
	}
	for _, a := range accounts {
		if err := cw.Write(Row(a)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
