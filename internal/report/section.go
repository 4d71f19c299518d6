package report

import (
	"regexp"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

var reClosedHeading = regexp.MustCompile(`(?i)\bclosed\s+accounts\b`)

// Boundary is the offset where closed-account entries begin, if the report has one.
type Boundary struct {
	Offset int
	Found  bool
}

// LocateClosedSection returns the offset of the first "CLOSED ACCOUNTS" heading.
func LocateClosedSection(doc string) Boundary {
	loc := reClosedHeading.FindStringIndex(doc)
	if loc == nil {
		return Boundary{}
	}
	return Boundary{Offset: loc[0], Found: true}
}

// Classify assigns the section for a block starting at start.
func (b Boundary) Classify(start int) constants.Section {
	if b.Found && start > b.Offset {
		return constants.SectionClosed
	}
	return constants.SectionOpen
}
