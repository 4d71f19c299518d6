package report

import (
	"regexp"
	"strings"
)

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reHorizontal = regexp.MustCompile(`[\t\v\f \x{00A0}\x{1680}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]+`)
	reLineEdge   = regexp.MustCompile(` ?\n ?`)
	reMultiBreak = regexp.MustCompile(`\n{2,}`)
)

// Normalize collapses noisy whitespace in extracted report text.
// Runs of horizontal whitespace become one space, spaces touching a line break
// are dropped, blank lines disappear and the result is trimmed. Only the shape
// of whitespace changes; Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reHorizontal.ReplaceAllString(s, " ")
	s = reLineEdge.ReplaceAllString(s, "\n")
	s = reMultiBreak.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
