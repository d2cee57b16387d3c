package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
	"github.com/jazanyumba/chama-vault/pkg/utils"
)

// LeaderboardCache stores computed leaderboards per group.
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context, groupID uuid.UUID) ([]domain.LeaderboardEntry, bool, error)
	SetLeaderboard(ctx context.Context, groupID uuid.UUID, entries []domain.LeaderboardEntry) error
	InvalidateLeaderboard(ctx context.Context, groupID uuid.UUID) error
}

// ReminderLedger remembers which reminders already went out today.
type ReminderLedger interface {
	MarkReminded(ctx context.Context, kind string, id uuid.UUID, day time.Time) (bool, error)
}

// TokenIssuer signs bearer tokens for authenticated members.
type TokenIssuer interface {
	Issue(member *domain.Member) (string, error)
}

// storeError translates repository errors into business errors.
func storeError(err error, what string) error {
	if err == nil {
		return nil
	}

	var be *customError.BusinessError
	switch {
	case errors.As(err, &be):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return customError.NewNotFound(what+" not found", nil)
	case errors.Is(err, customError.ErrDuplicate):
		return customError.NewConflict(what+" already exists", err)
	}
	return customError.WrapDatabaseError(err)
}

// notifyQuietly hands n to the sender and logs any failure.
func notifyQuietly(ctx context.Context, sender notify.Sender, n notify.Notification) {
	if sender == nil {
		return
	}
	if err := sender.Notify(ctx, n); err != nil {
		log.Printf("[notify] warning: %s for member %s failed: %v", n.Template, n.MemberID, err)
	}
}

func invalidateLeaderboard(ctx context.Context, cache LeaderboardCache, groupID uuid.UUID) {
	if cache == nil {
		return
	}
	if err := cache.InvalidateLeaderboard(ctx, groupID); err != nil {
		log.Printf("[cache] warning: invalidate leaderboard %s: %v", groupID, err)
	}
}

func requirePositive(amount decimal.Decimal, field string) error {
	if !amount.IsPositive() {
		return customError.NewValidation(field+" must be greater than zero", nil)
	}
	if !utils.IsCents(amount) {
		return customError.NewValidation(field+" must have at most 2 decimal places", nil)
	}
	return nil
}

// requireSelfOrAdmin allows members to read their own records and admins to read any in their group.
func requireSelfOrAdmin(actor domain.Actor, memberID, groupID uuid.UUID) error {
	if err := actor.RequireGroup(groupID); err != nil {
		return err
	}
	if actor.MemberID != memberID && !actor.IsAdmin() {
		return customError.NewForbidden("members may only view their own records", nil)
	}
	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}
