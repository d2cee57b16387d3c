package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// ContributionService records payments and timing ratings against cycle contributions.
type ContributionService struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	notifier notify.Sender
	cache    LeaderboardCache
	now      func() time.Time
}

func NewContributionService(repos repository.Repos, uow repository.UnitOfWork, notifier notify.Sender, cache LeaderboardCache) *ContributionService {
	return &ContributionService{
		repos:    repos,
		uow:      uow,
		notifier: notifier,
		cache:    cache,
		now:      time.Now,
	}
}

// RecordContribution sets the payment on the member's outstanding contribution in the cycle.
// Status and days late are always derived from the amounts and dates; a status in the
// request is ignored.
func (s *ContributionService) RecordContribution(ctx context.Context, actor domain.Actor, cycleID uuid.UUID, req *domain.RecordContributionRequest) (*domain.Contribution, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := requirePositive(req.PaidAmount, "paid amount"); err != nil {
		return nil, err
	}

	paidDate := s.now()
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}

	var contribution *domain.Contribution
	var cycle *domain.Cycle
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		cycle, err = r.Cycles.GetByID(ctx, cycleID)
		if err != nil {
			return storeError(err, "cycle")
		}
		if err := actor.RequireGroup(cycle.GroupID); err != nil {
			return err
		}

		contribution, err = r.Contributions.GetOutstandingForUpdate(ctx, req.MemberID, cycleID)
		if errors.Is(err, sql.ErrNoRows) {
			return customError.NewNotFound("no outstanding contribution for member in cycle", customError.ErrContributionNotFound)
		}
		if err != nil {
			return storeError(err, "contribution")
		}

		recorder := actor.MemberID
		contribution.PaidAmount = req.PaidAmount
		contribution.PaidDate = &paidDate
		contribution.Notes = req.Notes
		contribution.RecordedBy = &recorder

		return storeError(r.Contributions.Update(ctx, contribution), "contribution")
	})
	if err != nil {
		return nil, err
	}

	invalidateLeaderboard(ctx, s.cache, cycle.GroupID)
	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID: contribution.MemberID,
		Template: notify.TemplateContributionRecorded,
		Variables: map[string]string{
			"amount":       money(contribution.PaidAmount),
			"cycle_number": strconv.Itoa(cycle.CycleNumber),
			"status":       contribution.Status,
		},
	})
	return contribution, nil
}

// RateTiming stores the admin's early/on_time/late judgement on a contribution.
func (s *ContributionService) RateTiming(ctx context.Context, actor domain.Actor, contributionID uuid.UUID, req *domain.RateTimingRequest) (*domain.Contribution, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if !domain.IsValidTimingRating(req.TimingRating) {
		return nil, customError.NewValidation("timing rating must be early, on_time or late", customError.ErrInvalidTimingRating)
	}

	contribution, err := s.repos.Contributions.GetByID(ctx, contributionID)
	if err != nil {
		return nil, storeError(err, "contribution")
	}
	if err := actor.RequireGroup(contribution.GroupID); err != nil {
		return nil, err
	}

	now := s.now()
	rater := actor.MemberID
	contribution.TimingRating = req.TimingRating
	contribution.RatingNotes = req.Notes
	contribution.RatedBy = &rater
	contribution.RatingDate = &now

	if err := s.repos.Contributions.Update(ctx, contribution); err != nil {
		return nil, storeError(err, "contribution")
	}

	invalidateLeaderboard(ctx, s.cache, contribution.GroupID)
	return contribution, nil
}

func (s *ContributionService) ListMemberContributions(ctx context.Context, actor domain.Actor, memberID uuid.UUID) ([]*domain.Contribution, error) {
	if err := requireSelfOrAdmin(actor, memberID, actor.GroupID); err != nil {
		return nil, err
	}
	contributions, err := s.repos.Contributions.ListByMember(ctx, memberID, actor.GroupID)
	if err != nil {
		return nil, storeError(err, "contributions")
	}
	return contributions, nil
}
