package loan

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleLoan() Loan {
	return Loan{
		ID:           "0195b7e2-544a-7000-8000-000000000000",
		Amount:       12000,
		Term:         12,
		Rate:         0.12,
		CreationDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInstallment(t *testing.T) {
	// $12,000 over 12 months at a nominal 12% annual rate.
	got, err := Installment(exampleLoan())
	require.NoError(t, err)
	assert.Equal(t, 1066.19, got)
}

func TestInstallmentRoundedToCents(t *testing.T) {
	loans := []Loan{
		{Amount: 1000, Term: 7, Rate: 0.055},
		{Amount: 250000, Term: 360, Rate: 0.0475},
		{Amount: 999, Term: 3, Rate: 1.0},
		{Amount: 5000, Term: 24, Rate: 0.18},
	}
	for _, l := range loans {
		got, err := Installment(l)
		require.NoError(t, err)
		assert.Equal(t, math.Round(got*100)/100, got, "installment %v not rounded to 2 decimals", got)
		assert.Greater(t, got, float64(l.Amount)/float64(l.Term),
			"with a positive rate the installment must exceed the interest-free share")
	}
}

func TestInstallmentZeroRate(t *testing.T) {
	l := exampleLoan()
	l.Rate = 0

	_, err := Installment(l)
	require.ErrorIs(t, err, ErrNonAmortizing)
}

func TestDebtLeftMidTerm(t *testing.T) {
	l := exampleLoan()

	// 2020-07-01 is six whole months before the 2021-01-01 end of term.
	got, err := DebtLeft(l, time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1066.19*6, got)
}

func TestDebtLeftIgnoresPartialMonths(t *testing.T) {
	l := exampleLoan()

	got, err := DebtLeft(l, time.Date(2020, 7, 15, 10, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1066.19*5, got)
}

func TestDebtLeftWindowEdges(t *testing.T) {
	l := exampleLoan()
	end := l.CreationDate.AddDate(0, l.Term, 0)

	for _, date := range []time.Time{
		l.CreationDate.AddDate(0, 0, -30), // before the loan started
		l.CreationDate,                    // exactly at creation: excluded
		end,                               // exactly at end of term: excluded
		end.AddDate(0, 1, 0),              // after the final installment
	} {
		_, err := DebtLeft(l, date)
		assert.ErrorIs(t, err, ErrOutOfRange, "date %s should be out of range", date)
	}

	// One second inside either edge is in range.
	_, err := DebtLeft(l, l.CreationDate.Add(time.Second))
	assert.NoError(t, err)
	got, err := DebtLeft(l, end.Add(-time.Second))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got, "less than a whole month left")
}

func TestDebtLeftZoneStripped(t *testing.T) {
	l := exampleLoan()

	// The zone is stripped to the wall clock before month arithmetic, so
	// 05:00+05:00 counts as 05:00: five whole months to a midnight end,
	// not six.
	offset := time.FixedZone("UTC+5", 5*60*60)
	inZone := time.Date(2020, 7, 1, 5, 0, 0, 0, offset)

	got, err := DebtLeft(l, inZone)
	require.NoError(t, err)
	assert.Equal(t, 1066.19*5, got)
}

func TestWholeMonthsBetween(t *testing.T) {
	jan1 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		from time.Time
		to   time.Time
		want int
	}{
		{jan1, jan1.AddDate(0, 6, 0), 6},
		{jan1, jan1.AddDate(0, 14, 0), 14},
		{jan1.AddDate(0, 0, 15), jan1.AddDate(0, 6, 0), 5},
		{jan1, jan1.AddDate(0, 0, 20), 0},
		{jan1, jan1, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, wholeMonthsBetween(tc.from, tc.to),
			"months between %s and %s", tc.from, tc.to)
	}
}
