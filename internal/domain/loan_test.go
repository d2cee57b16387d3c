package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

func sampleTerms() LoanTerms {
	return LoanTerms{
		Amount:            decimal.NewFromInt(10000),
		InterestRate:      decimal.NewFromInt(10),
		Fees:              decimal.NewFromInt(200),
		DueDate:           date(2024, 2, 1),
		InstallmentNumber: 4,
	}
}

func TestLoan_Offer(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{name: "requested loan can be offered", status: LoanStatusRequested},
		{name: "offered loan can be re-offered", status: LoanStatusOffered},
		{name: "active loan is closed to offers", status: LoanStatusActive, wantErr: true},
		{name: "rejected loan is closed to offers", status: LoanStatusRejected, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loan{Status: tt.status, TotalDue: decimal.Zero}
			err := l.Offer(sampleTerms())

			if tt.wantErr {
				assert.True(t, customError.IsKind(err, customError.KindConflict))
				assert.True(t, errors.Is(err, customError.ErrLoanClosedForOffer))
				assert.Equal(t, tt.status, l.Status)
				assert.True(t, l.TotalDue.IsZero())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, LoanStatusOffered, l.Status)
			assert.True(t, l.TotalDue.Equal(decimal.NewFromInt(11200)))
			assert.True(t, l.InstallmentAmount.Equal(decimal.NewFromInt(2800)))
			assert.Equal(t, date(2024, 5, 1), *l.LastDueDate)
		})
	}
}

func TestLoan_ApplyRepayment(t *testing.T) {
	t.Run("exceeding balance is rejected and leaves balance", func(t *testing.T) {
		l := &Loan{Status: LoanStatusActive, TotalDue: decimal.NewFromInt(500)}
		err := l.ApplyRepayment(decimal.NewFromInt(600))

		assert.True(t, customError.IsKind(err, customError.KindValidation))
		assert.True(t, l.TotalDue.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, LoanStatusActive, l.Status)
	})

	t.Run("partial repayment keeps loan active", func(t *testing.T) {
		l := &Loan{Status: LoanStatusActive, TotalDue: decimal.NewFromInt(500)}
		require.NoError(t, l.ApplyRepayment(decimal.NewFromInt(200)))

		assert.True(t, l.TotalDue.Equal(decimal.NewFromInt(300)))
		assert.Equal(t, LoanStatusActive, l.Status)
	})

	t.Run("exact repayment completes loan", func(t *testing.T) {
		l := &Loan{Status: LoanStatusActive, TotalDue: decimal.NewFromInt(500)}
		require.NoError(t, l.ApplyRepayment(decimal.NewFromInt(500)))

		assert.True(t, l.TotalDue.IsZero())
		assert.Equal(t, LoanStatusCompleted, l.Status)
	})
}

func TestLoan_ApplyTermsStoresCents(t *testing.T) {
	terms := sampleTerms()
	terms.Amount = decimal.RequireFromString("1000.004")
	terms.Fees = decimal.RequireFromString("10.005")

	l := &Loan{}
	l.ApplyTerms(terms)

	assert.Equal(t, "1000.00", l.Amount.StringFixed(2))
	assert.True(t, l.Fees.Equal(decimal.RequireFromString("10.01")))
	// 1000 + 100 interest + 10.01 fees
	assert.True(t, l.TotalDue.Equal(decimal.RequireFromString("1110.01")))
	assert.True(t, l.Amount.Equal(decimal.NewFromInt(1000)))
}
