package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "validation", err: NewValidation("bad amount", nil), want: KindValidation},
		{name: "conflict wrapped", err: fmt.Errorf("start cycle: %w", NewConflict("active", ErrCycleAlreadyActive)), want: KindConflict},
		{name: "not found default sentinel", err: NewNotFound("loan", nil), want: KindNotFound},
		{name: "forbidden", err: NewForbidden("admin only", ErrAdminRequired), want: KindAuthorization},
		{name: "plain error", err: errors.New("boom"), want: KindInternal},
		{name: "database", err: WrapDatabaseError(errors.New("conn reset")), want: KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestBusinessError_Unwrap(t *testing.T) {
	err := NewConflict("group already has an active cycle", ErrCycleAlreadyActive)

	assert.True(t, errors.Is(err, ErrCycleAlreadyActive))
	assert.True(t, IsKind(err, KindConflict))
	assert.False(t, IsKind(nil, KindConflict))
	assert.Contains(t, err.Error(), ErrCodeConflict)
}

func TestNewNotFound_DefaultsSentinel(t *testing.T) {
	err := NewNotFound("repayment not found", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}
