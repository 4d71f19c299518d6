package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/joseph-ayodele/cibil-extractor/internal/report"
)

// Records returns the accounts as JSON-ready objects keyed by field key.
func Records(accounts []report.Account) []map[string]any {
	out := make([]map[string]any, 0, len(accounts))
	for _, a := range accounts {
		m := make(map[string]any, len(report.Vocabulary)+2)
		for k, v := range a.Map() {
			m[k] = v
		}
		out = append(out, m)
	}
	return out
}

// WriteJSON writes an indented array of account objects after validating it
// against AccountSchema.
func WriteJSON(w io.Writer, accounts []report.Account) error {
	if len(accounts) == 0 {
		return report.ErrNoAccounts
	}
	b, err := json.MarshalIndent(Records(accounts), "", "  ")
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return err
	}
	if err := Validate(doc); err != nil {
		return fmt.Errorf("json export failed schema validation: %w", err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
