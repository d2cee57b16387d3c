package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
	"github.com/jazanyumba/chama-vault/pkg/utils"
)

// requested -> offered -> active | rejected, active -> completed once fully repaid.
const (
	LoanStatusRequested = "requested"
	LoanStatusOffered   = "offered"
	LoanStatusActive    = "active"
	LoanStatusRejected  = "rejected"
	LoanStatusCompleted = "completed"
)

// IsValidLoanStatus reports whether s is a known loan status.
func IsValidLoanStatus(s string) bool {
	switch s {
	case LoanStatusRequested, LoanStatusOffered, LoanStatusActive, LoanStatusRejected, LoanStatusCompleted:
		return true
	}
	return false
}

// Loan represents a loan entity
type Loan struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	GroupID           uuid.UUID       `json:"group_id" db:"group_id"`
	MemberID          uuid.UUID       `json:"member_id" db:"member_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	InterestRate      decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	Fees              decimal.Decimal `json:"fees" db:"fees"`
	DueDate           *time.Time      `json:"due_date,omitempty" db:"due_date"`
	LastDueDate       *time.Time      `json:"last_due_date,omitempty" db:"last_due_date"`
	TotalDue          decimal.Decimal `json:"total_due" db:"total_due"`
	InstallmentNumber int             `json:"installment_number" db:"installment_number"`
	InstallmentAmount decimal.Decimal `json:"installment_amount" db:"installment_amount"`
	Status            string          `json:"status" db:"status"`
	Reason            string          `json:"reason,omitempty" db:"reason"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// LoanTerms are the financial terms an admin attaches to a loan.
type LoanTerms struct {
	Amount            decimal.Decimal `json:"amount" validate:"decimal_gt=0,cents"`
	InterestRate      decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0,cents"`
	Fees              decimal.Decimal `json:"fees" validate:"decimal_gte=0,cents"`
	DueDate           time.Time       `json:"due_date" validate:"required"`
	InstallmentNumber int             `json:"installment_number" validate:"required,gt=0"`
}

// ApplyTerms sets the amounts and dates derived from terms:
// total_due = amount + amount*rate/100 + fees, installment = total_due/n,
// last_due_date = due_date + (n-1) months.
func (l *Loan) ApplyTerms(t LoanTerms) {
	n := t.InstallmentNumber
	if n <= 0 {
		n = 1
	}
	due := t.DueDate
	last := utils.AddMonths(due, n-1)

	l.Amount = utils.RoundMoney(t.Amount)
	l.InterestRate = utils.RoundMoney(t.InterestRate)
	l.Fees = utils.RoundMoney(t.Fees)
	l.DueDate = &due
	l.LastDueDate = &last
	l.InstallmentNumber = n
	l.TotalDue = utils.CalculateTotalDue(l.Amount, l.InterestRate, l.Fees)
	l.InstallmentAmount = utils.CalculateInstallment(l.TotalDue, n)
}

// Offer attaches terms to a loan that is still open for negotiation.
func (l *Loan) Offer(t LoanTerms) error {
	switch l.Status {
	case LoanStatusActive, LoanStatusRejected, LoanStatusCompleted:
		return customError.NewConflict("loan cannot receive an offer once "+l.Status, customError.ErrLoanClosedForOffer)
	}
	l.ApplyTerms(t)
	l.Status = LoanStatusOffered
	return nil
}

// ApplyRepayment decrements the balance, completing the loan when it reaches zero.
func (l *Loan) ApplyRepayment(amount decimal.Decimal) error {
	if amount.GreaterThan(l.TotalDue) {
		return customError.NewValidation("repayment amount exceeds total due", customError.ErrRepaymentExceedsDue)
	}
	l.TotalDue = utils.MaxDecimal(decimal.Zero, l.TotalDue.Sub(amount))
	if l.TotalDue.IsZero() {
		l.Status = LoanStatusCompleted
	}
	return nil
}

type RequestLoanRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"decimal_gt=0,cents"`
	Reason string          `json:"reason" validate:"max=500"`
}

type CreateLoanRequest struct {
	MemberID uuid.UUID `json:"member_id" validate:"required"`
	Status   string    `json:"status" validate:"omitempty,oneof=requested offered active rejected completed"`
	Reason   string    `json:"reason" validate:"max=500"`
	LoanTerms
}

type LoanDecisionRequest struct {
	Action string `json:"action" validate:"required,oneof=accept reject"`
}
