package textextract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/text/unicode/norm"
)

// nativeText reads the PDF content streams page by page. Unreadable pages
// contribute an empty segment so page order is kept.
func (e *Extractor) nativeText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	defer func() {
		// the reader panics on some malformed xref tables
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, nil, fmt.Errorf("open pdf: %w", err)
	}
	defer func() { _ = f.Close() }()

	n := r.NumPage()
	segments := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, warnings, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			segments = append(segments, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, err))
			segments = append(segments, "")
			continue
		}
		segments = append(segments, norm.NFC.String(txt))
	}
	return strings.Join(segments, "\n"), n, warnings, nil
}
