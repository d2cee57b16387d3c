package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

func newID() uuid.UUID { return uuid.New() }

func TestNewCycle_AssignsDensePositions(t *testing.T) {
	members := []uuid.UUID{newID(), newID(), newID(), newID()}
	start := date(2024, 1, 1)

	c := NewCycle(newID(), newID(), 3, decimal.NewFromInt(500), FrequencyWeekly, start, members)

	require.Len(t, c.MemberOrder, 4)
	seen := map[int]bool{}
	for i, slot := range c.MemberOrder {
		assert.Equal(t, members[i], slot.MemberID)
		assert.Equal(t, i+1, slot.Position)
		assert.False(t, slot.HasReceived)
		seen[slot.Position] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, CycleStatusActive, c.Status)
	assert.Equal(t, 1, c.CurrentRecipientPosition)
	assert.Equal(t, 3, c.CycleNumber)
	assert.True(t, c.TotalExpectedPerRound.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, start.AddDate(0, 0, 21), c.MemberOrder[3].PayoutDate)
}

func TestPayoutDate(t *testing.T) {
	start := date(2024, 1, 31)
	assert.Equal(t, start, PayoutDate(start, FrequencyWeekly, 1))
	assert.Equal(t, date(2024, 2, 14), PayoutDate(start, FrequencyWeekly, 3))
	assert.Equal(t, date(2024, 3, 31), PayoutDate(start, FrequencyMonthly, 3))
}

func TestCycle_AdvanceToCompletion(t *testing.T) {
	members := []uuid.UUID{newID(), newID(), newID()}
	c := NewCycle(newID(), newID(), 1, decimal.NewFromInt(100), FrequencyMonthly, date(2024, 1, 1), members)
	now := time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

	last := c.CurrentRecipientPosition
	for i, m := range members {
		require.NoError(t, c.Advance(m, decimal.NewFromInt(300), now))
		assert.Greater(t, c.CurrentRecipientPosition, last)
		last = c.CurrentRecipientPosition
		assert.True(t, c.MemberOrder[i].HasReceived)
		if i < len(members)-1 {
			assert.Equal(t, CycleStatusActive, c.Status)
			assert.Nil(t, c.EndDate)
		}
	}

	assert.Equal(t, CycleStatusCompleted, c.Status)
	require.NotNil(t, c.EndDate)
	assert.Equal(t, now, *c.EndDate)
	assert.Equal(t, 3, c.PaidOutCount())

	err := c.Advance(members[0], decimal.NewFromInt(300), now)
	assert.True(t, errors.Is(err, customError.ErrCycleNotActive))
}

func TestCycle_AdvanceRejectsWrongRecipient(t *testing.T) {
	members := []uuid.UUID{newID(), newID()}
	c := NewCycle(newID(), newID(), 1, decimal.NewFromInt(100), FrequencyWeekly, date(2024, 1, 1), members)

	err := c.Advance(members[1], decimal.NewFromInt(200), time.Now())

	assert.True(t, customError.IsKind(err, customError.KindConflict))
	assert.True(t, errors.Is(err, customError.ErrRecipientMismatch))
	assert.Equal(t, 1, c.CurrentRecipientPosition)
	assert.False(t, c.MemberOrder[1].HasReceived)
}

func TestMemberOrder_ValueScan(t *testing.T) {
	order := MemberOrder{{MemberID: newID(), Position: 1, PayoutDate: date(2024, 1, 1), AmountReceived: decimal.NewFromInt(50)}}

	v, err := order.Value()
	require.NoError(t, err)

	var out MemberOrder
	require.NoError(t, out.Scan(v))
	require.Len(t, out, 1)
	assert.Equal(t, order[0].MemberID, out[0].MemberID)
	assert.True(t, out[0].AmountReceived.Equal(decimal.NewFromInt(50)))

	assert.Error(t, out.Scan(42))
}
