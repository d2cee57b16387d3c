package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
	"github.com/jazanyumba/chama-vault/pkg/utils"
)

const (
	CycleStatusActive    = "active"
	CycleStatusCompleted = "completed"
	CycleStatusPaused    = "paused"
)

const (
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// RotationSlot is one member's place in a table-banking rotation.
type RotationSlot struct {
	MemberID       uuid.UUID       `json:"member_id"`
	Position       int             `json:"position"`
	PayoutDate     time.Time       `json:"payout_date"`
	HasReceived    bool            `json:"has_received"`
	AmountReceived decimal.Decimal `json:"amount_received"`
}

// MemberOrder is stored as a jsonb column on the cycle row.
type MemberOrder []RotationSlot

func (o MemberOrder) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

func (o *MemberOrder) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*o = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("member order: unsupported type %T", src)
	}
	return json.Unmarshal(raw, o)
}

// Cycle is one full table-banking rotation for a group.
type Cycle struct {
	ID                       uuid.UUID       `json:"id" db:"id"`
	GroupID                  uuid.UUID       `json:"group_id" db:"group_id"`
	CycleNumber              int             `json:"cycle_number" db:"cycle_number"`
	ContributionAmount       decimal.Decimal `json:"contribution_amount" db:"contribution_amount"`
	Frequency                string          `json:"frequency" db:"frequency"`
	StartDate                time.Time       `json:"start_date" db:"start_date"`
	EndDate                  *time.Time      `json:"end_date,omitempty" db:"end_date"`
	MemberOrder              MemberOrder     `json:"member_order" db:"member_order"`
	Status                   string          `json:"status" db:"status"`
	CurrentRecipientPosition int             `json:"current_recipient_position" db:"current_recipient_position"`
	TotalExpectedPerRound    decimal.Decimal `json:"total_expected_per_round" db:"total_expected_per_round"`
	CreatedBy                uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt                time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at" db:"updated_at"`
}

// PayoutDate returns the date the member at position pays out: start + (position-1) periods.
func PayoutDate(start time.Time, frequency string, position int) time.Time {
	if frequency == FrequencyMonthly {
		return utils.AddMonths(start, position-1)
	}
	return start.AddDate(0, 0, 7*(position-1))
}

// NewCycle builds an active cycle from an already shuffled member list.
// Positions are assigned 1..N in the given order.
func NewCycle(groupID, createdBy uuid.UUID, number int, amount decimal.Decimal, frequency string, start time.Time, members []uuid.UUID) *Cycle {
	order := make(MemberOrder, len(members))
	for i, id := range members {
		order[i] = RotationSlot{
			MemberID:       id,
			Position:       i + 1,
			PayoutDate:     PayoutDate(start, frequency, i+1),
			AmountReceived: decimal.Zero,
		}
	}

	return &Cycle{
		ID:                       uuid.New(),
		GroupID:                  groupID,
		CycleNumber:              number,
		ContributionAmount:       amount,
		Frequency:                frequency,
		StartDate:                start,
		MemberOrder:              order,
		Status:                   CycleStatusActive,
		CurrentRecipientPosition: 1,
		TotalExpectedPerRound:    amount.Mul(decimal.NewFromInt(int64(len(members)))),
		CreatedBy:                createdBy,
	}
}

// CurrentRecipient returns the slot at CurrentRecipientPosition.
func (c *Cycle) CurrentRecipient() (*RotationSlot, bool) {
	for i := range c.MemberOrder {
		if c.MemberOrder[i].Position == c.CurrentRecipientPosition {
			return &c.MemberOrder[i], true
		}
	}
	return nil, false
}

// Advance pays out the current recipient and moves the pointer forward.
// The supplied member must be the one at the current position; completing the
// last slot marks the cycle completed and stamps EndDate.
func (c *Cycle) Advance(memberID uuid.UUID, amount decimal.Decimal, now time.Time) error {
	if c.Status != CycleStatusActive {
		return customError.NewConflict(fmt.Sprintf("cycle %d is %s", c.CycleNumber, c.Status), customError.ErrCycleNotActive)
	}

	slot, ok := c.CurrentRecipient()
	if !ok || slot.MemberID != memberID {
		return customError.NewConflict("member is not the current recipient", customError.ErrRecipientMismatch)
	}

	slot.HasReceived = true
	slot.AmountReceived = amount
	c.CurrentRecipientPosition++

	if c.CurrentRecipientPosition > len(c.MemberOrder) {
		c.Status = CycleStatusCompleted
		end := now
		c.EndDate = &end
	}
	return nil
}

// PaidOutCount returns how many slots have received their payout.
func (c *Cycle) PaidOutCount() int {
	n := 0
	for _, s := range c.MemberOrder {
		if s.HasReceived {
			n++
		}
	}
	return n
}

type StartCycleRequest struct {
	ContributionAmount decimal.Decimal `json:"contribution_amount" validate:"decimal_gt=0,cents"`
	Frequency          string          `json:"frequency" validate:"required,oneof=weekly monthly"`
	StartDate          time.Time       `json:"start_date" validate:"required"`
}

type ProgressCycleRequest struct {
	MemberID       uuid.UUID       `json:"member_id" validate:"required"`
	AmountReceived decimal.Decimal `json:"amount_received" validate:"decimal_gte=0,cents"`
}

type StartCycleResponse struct {
	Cycle         *Cycle          `json:"cycle"`
	Contributions []*Contribution `json:"contributions"`
}
