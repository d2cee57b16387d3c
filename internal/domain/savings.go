package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	SavingsEntryDeposit    = "deposit"
	SavingsEntryWithdrawal = "withdrawal"
)

const (
	WithdrawalPurposeCash          = "cash"
	WithdrawalPurposeLoanRepayment = "loan_repayment"
)

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// SavingsEntry is an append-only line in a member's savings ledger.
type SavingsEntry struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	GroupID    uuid.UUID       `json:"group_id" db:"group_id"`
	MemberID   uuid.UUID       `json:"member_id" db:"member_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	EntryType  string          `json:"entry_type" db:"entry_type"`
	Reference  string          `json:"reference,omitempty" db:"reference"`
	RecordedBy uuid.UUID       `json:"recorded_by" db:"recorded_by"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// WithdrawalRequest asks to take money out of savings, either as cash or against a loan.
type WithdrawalRequest struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	GroupID     uuid.UUID       `json:"group_id" db:"group_id"`
	MemberID    uuid.UUID       `json:"member_id" db:"member_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Purpose     string          `json:"purpose" db:"purpose"`
	LoanID      *uuid.UUID      `json:"loan_id,omitempty" db:"loan_id"`
	Status      string          `json:"status" db:"status"`
	ProcessedBy *uuid.UUID      `json:"processed_by,omitempty" db:"processed_by"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty" db:"processed_at"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// MemberBalance is a member's savings total, used for ranking.
type MemberBalance struct {
	MemberID uuid.UUID       `json:"member_id" db:"member_id"`
	Balance  decimal.Decimal `json:"balance" db:"balance"`
}

type DepositRequest struct {
	MemberID  uuid.UUID       `json:"member_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"decimal_gt=0,cents"`
	Reference string          `json:"reference" validate:"max=100"`
}

type WithdrawalRequestInput struct {
	Amount  decimal.Decimal `json:"amount" validate:"decimal_gt=0,cents"`
	Purpose string          `json:"purpose" validate:"required,oneof=cash loan_repayment"`
	LoanID  *uuid.UUID      `json:"loan_id" validate:"required_if=Purpose loan_repayment"`
}

type BalanceResponse struct {
	MemberID uuid.UUID       `json:"member_id"`
	Balance  decimal.Decimal `json:"balance"`
}
