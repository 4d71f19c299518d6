package report

import "regexp"

// Shape is the form a field's value is expected to take after its label.
type Shape int

const (
	ShapeText   Shape = iota // rest of the line
	ShapeAmount              // currency token, e.g. ₹1,23,456
	ShapeDate                // dd/mm/yyyy or the placeholder
)

func (s Shape) String() string {
	switch s {
	case ShapeAmount:
		return "amount"
	case ShapeDate:
		return "date"
	default:
		return "text"
	}
}

// Field identifies one column of the fixed account vocabulary.
type Field int

const (
	MemberName Field = iota
	AccountType
	AccountNumber
	Ownership
	SanctionedAmount
	CurrentBalance
	AmountOverdue
	DateOpened
	DateLastPayment
	DateClosed
	DateReported
	PaymentStartDate
	PaymentEndDate
	CollateralValue
	CollateralType

	fieldCount
)

// Placeholder is printed by the bureau where a value does not apply.
const Placeholder = "-"

// FieldSpec describes how to find one field's value inside a block.
type FieldSpec struct {
	Field  Field
	Key    string // stable snake_case name used in storage and JSON
	Header string // tabular column header
	Shape  Shape
	Label  *regexp.Regexp
}

func label(alternatives string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + alternatives + `)`)
}

// Vocabulary is indexed by Field and lists fields in export column order.
var Vocabulary = [fieldCount]FieldSpec{
	{MemberName, "member_name", "Member Name", ShapeText, label(`member\s+name\b`)},
	{AccountType, "account_type", "Account Type", ShapeText, label(`account\s+type\b`)},
	{AccountNumber, "account_number", "Account Number", ShapeText, label(`account\s+(?:number\b|no\b\.?)`)},
	{Ownership, "ownership", "Ownership", ShapeText, label(`ownership(?:\s+type)?\b`)},
	{SanctionedAmount, "sanctioned_amount", "Sanctioned Amount (₹)", ShapeAmount, label(`sanctioned\s+amount\b`)},
	{CurrentBalance, "current_balance", "Current Balance (₹)", ShapeAmount, label(`current\s+balance\b`)},
	{AmountOverdue, "amount_overdue", "Amount Overdue (₹)", ShapeAmount, label(`amount\s+overdue\b`)},
	{DateOpened, "date_opened", "Date Opened", ShapeDate, label(`date\s+opened(?:\s*/\s*disbursed\b)?`)},
	{DateLastPayment, "date_last_payment", "Date of Last Payment", ShapeDate, label(`date\s+of\s+last\s+payment\b`)},
	{DateClosed, "date_closed", "Date Closed", ShapeDate, label(`date\s+closed\b`)},
	{DateReported, "date_reported", "Date Reported", ShapeDate, label(`date\s+reported(?:\s+and\s+certified\b)?`)},
	{PaymentStartDate, "payment_start_date", "Payment Start Date", ShapeDate, label(`payment\s+start\s+date\b`)},
	{PaymentEndDate, "payment_end_date", "Payment End Date", ShapeDate, label(`payment\s+end\s+date\b`)},
	{CollateralValue, "collateral_value", "Collateral Value (₹)", ShapeAmount, label(`collateral\s+value\b|value\s+of\s+collateral\b`)},
	{CollateralType, "collateral_type", "Collateral Type", ShapeText, label(`collateral\s+type\b|type\s+of\s+collateral\b`)},
}

// Fields returns every field in column order.
func Fields() []Field {
	out := make([]Field, fieldCount)
	for i := range out {
		out[i] = Field(i)
	}
	return out
}

// Spec returns the vocabulary entry for f.
func (f Field) Spec() FieldSpec { return Vocabulary[f] }

func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return Vocabulary[f].Key
}

// FieldByKey looks a field up by its snake_case key.
func FieldByKey(key string) (Field, bool) {
	for _, spec := range Vocabulary {
		if spec.Key == key {
			return spec.Field, true
		}
	}
	return 0, false
}
