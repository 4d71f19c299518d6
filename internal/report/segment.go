package report

import "regexp"

var (
	// one account per "Member Name" line; the value follows on the next line
	reAnchor = regexp.MustCompile(`(?im)^[ \t]*member[ \t]+name[ \t]*$`)
	reFooter = regexp.MustCompile(`(?im)^[ \t]*payment[ \t]+status\b`)
)

// Block is the span of the document describing a single account.
type Block struct {
	Start int    // offset of the anchor line in the document
	End   int    // exclusive; next anchor, end of document or footer
	Text  string // doc[Start:End]
	Tail  string // footer text cut off from the block, if any
}

// Segment splits a normalized document into account blocks in document order.
// A document without anchors yields no blocks.
func Segment(doc string) []Block {
	locs := reAnchor.FindAllStringIndex(doc, -1)
	if len(locs) == 0 {
		return nil
	}
	blocks := make([]Block, 0, len(locs))
	for i, loc := range locs {
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		b := Block{Start: loc[0], End: end, Text: doc[loc[0]:end]}
		if f := reFooter.FindStringIndex(b.Text); f != nil {
			b.Tail = b.Text[f[0]:]
			b.Text = b.Text[:f[0]]
			b.End = b.Start + f[0]
		}
		blocks = append(blocks, b)
	}
	return blocks
}
