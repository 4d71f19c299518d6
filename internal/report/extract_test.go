package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		block string
		field Field
		want  Match
	}{
		{"text on next line", "Member Name\nHDFC BANK\nAccount Type\nCredit Card", AccountType, present("Credit Card")},
		{"text inline with colon", "Account Type: Credit Card\n", AccountType, present("Credit Card")},
		{"label wrapped across lines", "Account\nNumber\nXXXX1234", AccountNumber, present("XXXX1234")},
		{"account no abbreviation", "Account No. 99887766", AccountNumber, present("99887766")},
		{"case-insensitive label", "MEMBER NAME\nKOTAK MAHINDRA BANK", MemberName, present("KOTAK MAHINDRA BANK")},
		{"missing label", "Member Name\nHDFC BANK", AccountNumber, Match{}},
		{"label at end of block", "Member Name\nHDFC\nOwnership", Ownership, Match{}},
		{"value line missing before amount label", "Ownership\nSanctioned Amount ₹10,000", Ownership, Match{}},
		{"value line missing before text label", "Account Type\nAccount Number\n123", AccountType, Match{}},
		{"value starting with label word kept", "Collateral Type\nOwnership Deed of Flat", CollateralType, present("Ownership Deed of Flat")},
		{"placeholder text kept raw", "Ownership\n-", Ownership, present("-")},

		{"amount with rupee symbol", "Current Balance ₹2,10,500\n", CurrentBalance, present("₹2,10,500")},
		{"amount with rs prefix and decimals", "Current Balance Rs. 1,000.50", CurrentBalance, present("Rs. 1,000.50")},
		{"amount on next line", "Current Balance\n12,000", CurrentBalance, present("12,000")},
		{"amount malformed", "Current Balance N/A\n", CurrentBalance, Match{}},
		{"amount placeholder", "Amount Overdue -\n", AmountOverdue, Match{}},
		{"first amount label malformed", "Current Balance N/A\nCurrent Balance ₹5", CurrentBalance, Match{}},

		{"date", "Date Closed 31/12/2019\n", DateClosed, present("31/12/2019")},
		{"date long label", "Date Opened / Disbursed 01/04/2019", DateOpened, present("01/04/2019")},
		{"date short label", "Date Opened 01/04/2019", DateOpened, present("01/04/2019")},
		{"date placeholder", "Date Closed -\nDate Reported 31/01/2024", DateClosed, present("-")},
		{"date placeholder on next line", "Date Closed\n-", DateClosed, present("-")},
		{"date wrong format", "Date Closed 2019-12-31", DateClosed, Match{}},
		{"dash is not a placeholder when followed by digits", "Date Closed -123", DateClosed, Match{}},
		{"date reported and certified", "Date Reported And Certified 31/01/2024", DateReported, present("31/01/2024")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.block, tt.field.Spec()))
		})
	}
}

func TestExtract_FirstLabelWins(t *testing.T) {
	block := `Member Name
SBI
Account Type
Home Loan
Account Number
HL123
Ownership
Joint
Collateral Type
Flat with Ownership Deed
Ownership
Individual`

	assert.Equal(t, present("Joint"), Extract(block, Ownership.Spec()))
	assert.Equal(t, present("Flat with Ownership Deed"), Extract(block, CollateralType.Spec()))
}

func TestVocabulary(t *testing.T) {
	keys := map[string]bool{}
	for i, spec := range Vocabulary {
		assert.Equal(t, Field(i), spec.Field, "vocabulary must be indexed by field")
		assert.NotEmpty(t, spec.Header)
		assert.False(t, keys[spec.Key], "duplicate key %s", spec.Key)
		keys[spec.Key] = true

		f, ok := FieldByKey(spec.Key)
		assert.True(t, ok)
		assert.Equal(t, spec.Field, f)
	}
	assert.Len(t, Fields(), 15)
	assert.Equal(t, "member_name", MemberName.String())
	assert.Equal(t, "unknown", Field(99).String())

	_, ok := FieldByKey("nope")
	assert.False(t, ok)
}
