package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jazanyumba/chama-vault/pkg/utils"
)

const (
	ContributionStatusPending       = "pending"
	ContributionStatusPaid          = "paid"
	ContributionStatusLate          = "late"
	ContributionStatusPartiallyPaid = "partially_paid"
)

// Timing ratings are an admin judgement, independent of the derived status.
const (
	TimingEarly    = "early"
	TimingOnTime   = "on_time"
	TimingLate     = "late"
	TimingNotRated = "not_rated"
)

// IsValidTimingRating reports whether r is one an admin may assign.
func IsValidTimingRating(r string) bool {
	switch r {
	case TimingEarly, TimingOnTime, TimingLate:
		return true
	}
	return false
}

// Contribution is a member's expected and actual payment for one due date in a cycle.
type Contribution struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	GroupID        uuid.UUID       `json:"group_id" db:"group_id"`
	CycleID        uuid.UUID       `json:"cycle_id" db:"cycle_id"`
	MemberID       uuid.UUID       `json:"member_id" db:"member_id"`
	ExpectedAmount decimal.Decimal `json:"expected_amount" db:"expected_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount" db:"paid_amount"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	PaidDate       *time.Time      `json:"paid_date,omitempty" db:"paid_date"`
	Status         string          `json:"status" db:"status"`
	DaysLate       int             `json:"days_late" db:"days_late"`
	TimingRating   string          `json:"timing_rating" db:"timing_rating"`
	RatingNotes    string          `json:"rating_notes,omitempty" db:"rating_notes"`
	RatedBy        *uuid.UUID      `json:"rated_by,omitempty" db:"rated_by"`
	RatingDate     *time.Time      `json:"rating_date,omitempty" db:"rating_date"`
	RecordedBy     *uuid.UUID      `json:"recorded_by,omitempty" db:"recorded_by"`
	Notes          string          `json:"notes,omitempty" db:"notes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// NewContribution returns a pending, unrated contribution.
func NewContribution(groupID, cycleID, memberID uuid.UUID, expected decimal.Decimal, due time.Time) *Contribution {
	return &Contribution{
		ID:             uuid.New(),
		GroupID:        groupID,
		CycleID:        cycleID,
		MemberID:       memberID,
		ExpectedAmount: expected,
		PaidAmount:     decimal.Zero,
		DueDate:        due,
		Status:         ContributionStatusPending,
		TimingRating:   TimingNotRated,
	}
}

// DeriveContributionStatus computes status and days late from the amount and date fields.
// It is a pure function of its inputs; a nil paid date counts as not yet late.
// Amounts are compared at the two places the ledger stores.
func DeriveContributionStatus(expected, paid decimal.Decimal, due time.Time, paidDate *time.Time) (string, int) {
	expected, paid = utils.RoundMoney(expected), utils.RoundMoney(paid)
	daysLate := 0
	if paidDate != nil {
		daysLate = utils.DaysLate(due, *paidDate)
	}

	switch {
	case paid.GreaterThanOrEqual(expected) && paid.IsPositive():
		if daysLate > 0 {
			return ContributionStatusLate, daysLate
		}
		return ContributionStatusPaid, daysLate
	case paid.IsPositive():
		return ContributionStatusPartiallyPaid, daysLate
	default:
		return ContributionStatusPending, daysLate
	}
}

// Derive re-applies DeriveContributionStatus. Every write path calls it before persisting.
func (c *Contribution) Derive() {
	c.ExpectedAmount = utils.RoundMoney(c.ExpectedAmount)
	c.PaidAmount = utils.RoundMoney(c.PaidAmount)
	c.Status, c.DaysLate = DeriveContributionStatus(c.ExpectedAmount, c.PaidAmount, c.DueDate, c.PaidDate)
	if c.TimingRating == "" {
		c.TimingRating = TimingNotRated
	}
}

// IsOutstanding reports whether the contribution can still receive a payment record.
func (c *Contribution) IsOutstanding() bool {
	return c.Status == ContributionStatusPending || c.Status == ContributionStatusPartiallyPaid
}

type RecordContributionRequest struct {
	MemberID   uuid.UUID       `json:"member_id" validate:"required"`
	PaidAmount decimal.Decimal `json:"paid_amount" validate:"decimal_gt=0,cents"`
	PaidDate   *time.Time      `json:"paid_date"`
	Status     string          `json:"status" validate:"omitempty,oneof=pending paid late partially_paid"`
	Notes      string          `json:"notes" validate:"max=500"`
}

type RateTimingRequest struct {
	TimingRating string `json:"timing_rating" validate:"required"`
	Notes        string `json:"notes" validate:"max=500"`
}
