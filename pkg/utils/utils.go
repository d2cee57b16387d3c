package utils

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CalculateTotalDue returns amount + amount*rate/100 + fees, rounded to cents.
// The rate is a percentage, so 10 means 10%.
func CalculateTotalDue(amount, ratePercent, fees decimal.Decimal) decimal.Decimal {
	interest := amount.Mul(ratePercent).Div(hundred)
	return amount.Add(interest).Add(fees).Round(2)
}

// CalculateInstallment splits a total into n equal installments.
func CalculateInstallment(total decimal.Decimal, installments int) decimal.Decimal {
	if installments <= 0 {
		return total.Round(2)
	}
	return total.Div(decimal.NewFromInt(int64(installments))).Round(2)
}

// DaysLate counts whole calendar days from due to paid, never negative.
// Both dates are compared as UTC calendar days, so the time of day is ignored.
func DaysLate(dueDate, paidDate time.Time) int {
	due := StartOfDay(dueDate.UTC())
	paid := StartOfDay(paidDate.UTC())
	if !paid.After(due) {
		return 0
	}
	return int(math.Round(paid.Sub(due).Hours() / 24))
}

// AddMonths moves t forward by n calendar months.
func AddMonths(t time.Time, months int) time.Time {
	return t.AddDate(0, months, 0)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Percentage returns part/total*100, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part*100)/float64(total)*100) / 100
}

// RoundMoney rounds to the two places the ledger stores.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// IsCents reports whether d needs no rounding to be stored.
func IsCents(d decimal.Decimal) bool {
	return d.Equal(RoundMoney(d))
}

// MaxDecimal returns the larger of a and b.
func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}
