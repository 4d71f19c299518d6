package report

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cibil-extractor/constants"
)

func TestParse_SampleReport(t *testing.T) {
	res, err := Parse(sampleReport)
	require.NoError(t, err)
	require.Len(t, res.Accounts, 3)

	assert.Equal(t, 3, res.Stats.Blocks)
	assert.Equal(t, 3, res.Stats.Accepted)
	assert.Equal(t, 0, res.Stats.Rejected)
	assert.True(t, res.Stats.Boundary.Found)

	hdfc := res.Accounts[0]
	assert.Equal(t, []string{
		"HDFC BANK", "Credit Card", "XXXXXXXXXXXX1234", "Individual",
		"150000", "12345", "0",
		"01/04/2019", "05/01/2024", "", "31/01/2024", "01/05/2019", "",
		"0", "",
	}, hdfc.Values())
	assert.Equal(t, constants.SectionOpen, hdfc.Section)
	assert.Equal(t, "STANDARD", hdfc.PaymentStatus)

	icici := res.Accounts[1]
	assert.Equal(t, "ICICI BANK", icici.Get(MemberName))
	assert.Equal(t, "Joint", icici.Get(Ownership))
	assert.Equal(t, "210500", icici.Get(CurrentBalance))
	assert.Equal(t, "1200", icici.Get(AmountOverdue))
	assert.Equal(t, "15/08/2026", icici.Get(PaymentEndDate))
	assert.Equal(t, "750000", icici.Get(CollateralValue))
	assert.Equal(t, "Property", icici.Get(CollateralType))
	assert.Equal(t, constants.SectionOpen, icici.Section)
	assert.Equal(t, "SUB STANDARD", icici.PaymentStatus)

	sbi := res.Accounts[2]
	assert.Equal(t, "SBI CARDS", sbi.Get(MemberName))
	assert.Equal(t, "0", sbi.Get(AmountOverdue))
	assert.Equal(t, "31/12/2019", sbi.Get(DateClosed))
	assert.Equal(t, "", sbi.Get(PaymentStartDate))
	assert.Equal(t, constants.SectionClosed, sbi.Section)
	assert.Equal(t, "CLOSED", sbi.PaymentStatus)

	for i := 1; i < len(res.Accounts); i++ {
		assert.Greater(t, res.Accounts[i].Offset, res.Accounts[i-1].Offset, "records keep block order")
	}
}

func TestParse_Scenarios(t *testing.T) {
	t.Run("two open accounts", func(t *testing.T) {
		res, err := Parse("Member Name\nHDFC BANK\nAccount Number\n111\nMember Name\nAXIS BANK\nAccount Number\n222")
		require.NoError(t, err)
		require.Len(t, res.Accounts, 2)
		assert.Equal(t, "111", res.Accounts[0].Get(AccountNumber))
		assert.Equal(t, "222", res.Accounts[1].Get(AccountNumber))
		for _, a := range res.Accounts {
			assert.Equal(t, constants.SectionOpen, a.Section)
		}
	})

	t.Run("missing account number yields no records", func(t *testing.T) {
		res, err := Parse("Member Name\nAXIS BANK\nAccount Type\nAuto Loan\nOwnership\nIndividual")
		assert.True(t, errors.Is(err, ErrNoAccounts))
		assert.Empty(t, res.Accounts)
		assert.Equal(t, 1, res.Stats.Blocks)
		assert.Equal(t, 1, res.Stats.Rejected)
	})

	t.Run("account after closed heading", func(t *testing.T) {
		res, err := Parse("ACCOUNTS\nClosed Accounts\nMember Name\nSBI\nAccount Number\n42")
		require.NoError(t, err)
		require.Len(t, res.Accounts, 1)
		assert.Equal(t, constants.SectionClosed, res.Accounts[0].Section)
	})

	t.Run("placeholder date", func(t *testing.T) {
		res, err := Parse("Member Name\nSBI\nAccount Number\n42\nDate Closed -")
		require.NoError(t, err)
		assert.Equal(t, "", res.Accounts[0].Get(DateClosed))
	})

	t.Run("rupee amount", func(t *testing.T) {
		res, err := Parse("Member Name\nSBI\nAccount Number\n42\nSanctioned Amount ₹1,23,456")
		require.NoError(t, err)
		assert.Equal(t, "123456", res.Accounts[0].Get(SanctionedAmount))
	})

	t.Run("first ownership label wins", func(t *testing.T) {
		res, err := Parse("Member Name\nSBI\nAccount Number\n42\nOwnership\nIndividual\nCollateral Type\nJoint Ownership Deed")
		require.NoError(t, err)
		assert.Equal(t, "Individual", res.Accounts[0].Get(Ownership))
		assert.Equal(t, "Joint Ownership Deed", res.Accounts[0].Get(CollateralType))
	})
}

func TestParse_EmptyInputs(t *testing.T) {
	for _, in := range []string{"", "   \n\n", "CIBIL REPORT\nNo accounts"} {
		res, err := Parse(in)
		assert.ErrorIs(t, err, ErrNoAccounts)
		assert.Empty(t, res.Accounts)
		assert.Zero(t, res.Stats.Blocks)
	}
}

func TestParse_InvalidBlocksAreSkipped(t *testing.T) {
	doc := "Member Name\nA\nAccount Number\n1\nMember Name\nB\nMember Name\nC\nAccount Number\n3"
	res, err := Parse(doc)
	require.NoError(t, err)
	require.Len(t, res.Accounts, 2)
	assert.Equal(t, "A", res.Accounts[0].Get(MemberName))
	assert.Equal(t, "C", res.Accounts[1].Get(MemberName))
	assert.Equal(t, 1, res.Stats.Rejected)
}

func TestCollector(t *testing.T) {
	var c Collector
	_, err := c.Result()
	assert.ErrorIs(t, err, ErrNoAccounts)

	var a, b Account
	a.Set(MemberName, "A")
	b.Set(MemberName, "B")
	c.Add(a)
	c.Add(b)

	out, err := c.Result()
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "A", out[0].Get(MemberName))
	assert.Equal(t, "B", out[1].Get(MemberName))

	out[0].Set(MemberName, "changed")
	assert.Equal(t, "A", c.Accounts()[0].Get(MemberName))
}
