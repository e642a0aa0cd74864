package loan

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Installment computes the fixed monthly payment for a loan:
//
//	r = rate / 12
//	installment = (r + r / ((1+r)^term - 1)) * amount
//
// rounded to 2 decimal places. A zero rate makes the divisor zero, so
// such loans yield ErrNonAmortizing instead of a value.
func Installment(l Loan) (float64, error) {
	r := l.Rate / 12
	if r == 0 {
		return 0, ErrNonAmortizing
	}
	divisor := math.Pow(1+r, float64(l.Term)) - 1
	installment := (r + r/divisor) * float64(l.Amount)
	if math.IsNaN(installment) || math.IsInf(installment, 0) {
		return 0, ErrNonAmortizing
	}
	return decimal.NewFromFloat(installment).Round(2).InexactFloat64(), nil
}

// DebtLeft approximates the remaining balance at date as
// installment * whole months until end of term. The window check is strict
// on both ends at second granularity; a date at or outside either edge is
// ErrOutOfRange. This is deliberately linear, not a present-value figure.
func DebtLeft(l Loan, date time.Time) (float64, error) {
	end := l.CreationDate.AddDate(0, l.Term, 0)
	if date.Unix() <= l.CreationDate.Unix() || date.Unix() >= end.Unix() {
		return 0, ErrOutOfRange
	}

	installment, err := Installment(l)
	if err != nil {
		return 0, err
	}

	// Month arithmetic works on the wall clock with the zone stripped,
	// matching how the window end itself is derived from creation_date.
	months := wholeMonthsBetween(stripZone(date), stripZone(end))
	return decimal.NewFromFloat(installment).
		Mul(decimal.NewFromInt(int64(months))).
		InexactFloat64(), nil
}

// wholeMonthsBetween counts full calendar months from one instant to a later
// one, ignoring any partial month.
func wholeMonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if from.AddDate(0, months, 0).After(to) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

func stripZone(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}
