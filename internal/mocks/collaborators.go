package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Notify(ctx context.Context, n notify.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) GetLeaderboard(ctx context.Context, groupID uuid.UUID) ([]domain.LeaderboardEntry, bool, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]domain.LeaderboardEntry), args.Bool(1), args.Error(2)
}

func (m *MockLeaderboardCache) SetLeaderboard(ctx context.Context, groupID uuid.UUID, entries []domain.LeaderboardEntry) error {
	args := m.Called(ctx, groupID, entries)
	return args.Error(0)
}

func (m *MockLeaderboardCache) InvalidateLeaderboard(ctx context.Context, groupID uuid.UUID) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type MockReminderLedger struct {
	mock.Mock
}

func (m *MockReminderLedger) MarkReminded(ctx context.Context, kind string, id uuid.UUID, day time.Time) (bool, error) {
	args := m.Called(ctx, kind, id, day)
	return args.Bool(0), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Issue(member *domain.Member) (string, error) {
	args := m.Called(member)
	return args.String(0), args.Error(1)
}
