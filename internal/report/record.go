package report

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

var (
	reCurrencyNoise = regexp.MustCompile(`(?i)₹|rs\.?|inr|[,\s]`)
	rePaymentStatus = regexp.MustCompile(`\A(?i:payment\s+status)[ :]*\n?([A-Z][A-Z: ]*)`)
)

// Account is one validated account record. Every vocabulary field is always
// present; absent values are empty strings (absent amounts are "0").
type Account struct {
	values        [fieldCount]string
	Section       constants.Section
	PaymentStatus string
	Offset        int // block start offset in the normalized document
}

// Get returns the value stored for f.
func (a Account) Get(f Field) string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return a.values[f]
}

// Set stores v for f; unknown fields are ignored.
func (a *Account) Set(f Field, v string) {
	if f < 0 || f >= fieldCount {
		return
	}
	a.values[f] = v
}

// Values returns the field values in column order.
func (a Account) Values() []string {
	out := make([]string, fieldCount)
	copy(out, a.values[:])
	return out
}

// Map returns the record keyed by field key, plus section and payment_status.
func (a Account) Map() map[string]string {
	m := make(map[string]string, fieldCount+2)
	for _, spec := range Vocabulary {
		m[spec.Key] = a.values[spec.Field]
	}
	m["section"] = string(a.Section)
	m["payment_status"] = a.PaymentStatus
	return m
}

// Valid reports whether both identity fields are present.
func (a Account) Valid() bool {
	return a.values[MemberName] != "" && a.values[AccountNumber] != ""
}

// CleanAmount strips currency symbols, thousands separators and whitespace.
// An empty amount becomes "0" so numeric columns stay consumable.
func CleanAmount(s string) string {
	s = reCurrencyNoise.ReplaceAllString(s, "")
	if s == "" {
		return "0"
	}
	return s
}

// normalizeValue applies the per-field cleanup to a raw match.
func normalizeValue(spec FieldSpec, m Match) string {
	v := strings.TrimSpace(m.Value)
	if v == Placeholder {
		v = ""
	}
	if spec.Shape == ShapeAmount {
		return CleanAmount(v)
	}
	return v
}

// BuildRecord runs every field specification against b and returns the
// resulting record, or false if the block lacks a member name or account number.
func BuildRecord(b Block, boundary Boundary) (Account, bool) {
	acc := Account{
		Section: boundary.Classify(b.Start),
		Offset:  b.Start,
	}
	for _, spec := range Vocabulary {
		acc.values[spec.Field] = normalizeValue(spec, Extract(b.Text, spec))
	}
	if sub := rePaymentStatus.FindStringSubmatch(b.Tail); sub != nil {
		acc.PaymentStatus = strings.TrimSpace(sub[1])
	}
	if !acc.Valid() {
		return Account{}, false
	}
	return acc, true
}
