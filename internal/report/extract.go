package report

import (
	"regexp"
	"strings"
)

// Match is the outcome of looking up one field in a block.
type Match struct {
	Value string
	Found bool
}

func present(v string) Match { return Match{Value: v, Found: true} }

var (
	reTextValue   = regexp.MustCompile(`^[\s:]*([^\n]*)`)
	reAmountValue = regexp.MustCompile(`(?i)^[\s:]*((?:₹|rs\.?|inr)?[ ]?\d[\d,]*(?:\.\d+)?)(?:\s|$)`)
	reDateValue   = regexp.MustCompile(`^[\s:]*(\d{2}/\d{2}/\d{4}|-)(?:\s|$)`)
)

// Extract returns the value following the first occurrence of spec's label in
// block. Only that occurrence is considered: if the text after it does not have
// the expected shape the field is absent, even if the label repeats later.
func Extract(block string, spec FieldSpec) Match {
	loc := spec.Label.FindStringIndex(block)
	if loc == nil {
		return Match{}
	}
	m := capture(valuePattern(spec.Shape), block[loc[1]:])
	// the value line is missing and the next field's label line was picked up instead
	if spec.Shape == ShapeText && m.Found && isLabelLine(m.Value) {
		return Match{}
	}
	return m
}

func valuePattern(s Shape) *regexp.Regexp {
	switch s {
	case ShapeAmount:
		return reAmountValue
	case ShapeDate:
		return reDateValue
	default:
		return reTextValue
	}
}

func capture(re *regexp.Regexp, s string) Match {
	sub := re.FindStringSubmatch(s)
	if sub == nil {
		return Match{}
	}
	v := strings.TrimSpace(sub[1])
	if v == "" {
		return Match{}
	}
	return present(v)
}

// isLabelLine reports whether line is a vocabulary label on its own, or a
// label followed by a colon or by a value of that label's shape.
func isLabelLine(line string) bool {
	for _, spec := range Vocabulary {
		loc := spec.Label.FindStringIndex(line)
		if loc == nil || loc[0] != 0 {
			continue
		}
		rest := strings.TrimSpace(line[loc[1]:])
		if rest == "" || strings.HasPrefix(rest, ":") {
			return true
		}
		if spec.Shape != ShapeText && capture(valuePattern(spec.Shape), rest).Found {
			return true
		}
	}
	return false
}
