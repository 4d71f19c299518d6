// Package report turns the text of a CIBIL credit report into account records.
//
// The pipeline is pure and synchronous: Normalize the raw text, locate the
// closed-accounts heading once, Segment the document on "Member Name" lines,
// Extract every vocabulary field from each block and keep the blocks that carry
// both a member name and an account number. Callers wanting a deadline impose
// it around Parse.
package report

// Stats summarizes one pass over a document.
type Stats struct {
	Blocks   int
	Accepted int
	Rejected int
	Boundary Boundary
}

// Result is the output of Parse.
type Result struct {
	Document string // normalized text
	Accounts []Account
	Stats    Stats
}

// Parse runs the full extraction over raw report text. The result is returned
// even when err is ErrNoAccounts so callers can report the statistics.
func Parse(raw string) (Result, error) {
	doc := Normalize(raw)
	boundary := LocateClosedSection(doc)
	blocks := Segment(doc)

	res := Result{
		Document: doc,
		Stats:    Stats{Blocks: len(blocks), Boundary: boundary},
	}

	var c Collector
	for _, b := range blocks {
		acc, ok := BuildRecord(b, boundary)
		if !ok {
			res.Stats.Rejected++
			continue
		}
		c.Add(acc)
	}
	res.Stats.Accepted = c.Len()

	accounts, err := c.Result()
	res.Accounts = accounts
	return res, err
}
