package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateTotalDue(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		rate     decimal.Decimal
		fees     decimal.Decimal
		expected decimal.Decimal
	}{
		{
			name:     "ten percent with fees",
			amount:   decimal.NewFromInt(10000),
			rate:     decimal.NewFromInt(10),
			fees:     decimal.NewFromInt(200),
			expected: decimal.NewFromInt(11200), // 10,000 + 1,000 + 200
		},
		{
			name:     "zero interest rate",
			amount:   decimal.NewFromInt(5000),
			rate:     decimal.Zero,
			fees:     decimal.Zero,
			expected: decimal.NewFromInt(5000),
		},
		{
			name:     "fractional rate rounds to cents",
			amount:   decimal.NewFromInt(333),
			rate:     decimal.NewFromFloat(2.5),
			fees:     decimal.Zero,
			expected: decimal.RequireFromString("341.33"), // 333 + 8.325
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateTotalDue(tt.amount, tt.rate, tt.fees)
			assert.True(t, result.Equal(tt.expected), "Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateInstallment(t *testing.T) {
	assert.True(t, CalculateInstallment(decimal.NewFromInt(11200), 4).Equal(decimal.NewFromInt(2800)))
	assert.True(t, CalculateInstallment(decimal.NewFromInt(100), 3).Equal(decimal.RequireFromString("33.33")))
	assert.True(t, CalculateInstallment(decimal.NewFromInt(100), 0).Equal(decimal.NewFromInt(100)))
}

func TestDaysLate(t *testing.T) {
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		paid     time.Time
		expected int
	}{
		{name: "five days late", paid: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), expected: 5},
		{name: "early", paid: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), expected: 0},
		{name: "same instant", paid: due, expected: 0},
		{name: "same day afternoon", paid: due.Add(15*time.Hour + 30*time.Minute), expected: 0},
		{name: "next day early morning", paid: time.Date(2024, 1, 11, 0, 5, 0, 0, time.UTC), expected: 1},
		{name: "next day morning", paid: time.Date(2024, 1, 11, 7, 0, 0, 0, time.UTC), expected: 1},
		{name: "other zone same utc day", paid: time.Date(2024, 1, 10, 23, 0, 0, 0, time.FixedZone("EAT", 3*3600)), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysLate(due, tt.paid))
		})
	}
}

func TestAddMonths(t *testing.T) {
	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC), AddMonths(start, 3))
	assert.Equal(t, start, AddMonths(start, 0))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 90.0, Percentage(9, 10))
	assert.Equal(t, 50.0, Percentage(5, 10))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 0.0, Percentage(0, 0))
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 3, 5, 17, 45, 12, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
}

func TestIsCents(t *testing.T) {
	assert.True(t, IsCents(decimal.RequireFromString("1000.00")))
	assert.True(t, IsCents(decimal.RequireFromString("12.500")))
	assert.False(t, IsCents(decimal.RequireFromString("999.996")))
	assert.True(t, RoundMoney(decimal.RequireFromString("999.996")).Equal(decimal.NewFromInt(1000)))
}
