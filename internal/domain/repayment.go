package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RepaymentStatusPending  = "pending"
	RepaymentStatusApproved = "approved"
	RepaymentStatusRejected = "rejected"
)

// LoanRepayment is a member's payment against a loan, confirmed by an admin.
type LoanRepayment struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	LoanID       uuid.UUID       `json:"loan_id" db:"loan_id"`
	GroupID      uuid.UUID       `json:"group_id" db:"group_id"`
	MemberID     uuid.UUID       `json:"member_id" db:"member_id"`
	Amount       decimal.Decimal `json:"amount" db:"amount"`
	PaidDate     time.Time       `json:"paid_date" db:"paid_date"`
	Status       string          `json:"status" db:"status"`
	TimingRating string          `json:"timing_rating" db:"timing_rating"`
	ConfirmedAt  *time.Time      `json:"confirmed_at,omitempty" db:"confirmed_at"`
	ConfirmedBy  *uuid.UUID      `json:"confirmed_by,omitempty" db:"confirmed_by"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

type SubmitRepaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"decimal_gt=0,cents"`
	PaidDate *time.Time      `json:"paid_date"`
}
