package service

import (
	"context"
	"database/sql"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// Shuffler permutes n elements in place through swap.
type Shuffler func(n int, swap func(i, j int))

// CycleService runs the table-banking rotation.
type CycleService struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	notifier notify.Sender
	shuffle  Shuffler
	now      func() time.Time
}

func NewCycleService(repos repository.Repos, uow repository.UnitOfWork, notifier notify.Sender) *CycleService {
	return &CycleService{
		repos:    repos,
		uow:      uow,
		notifier: notifier,
		shuffle:  rand.Shuffle,
		now:      time.Now,
	}
}

// StartCycle opens the next cycle for the admin's group with a random payout order
// and one pending contribution per approved member.
func (s *CycleService) StartCycle(ctx context.Context, actor domain.Actor, req *domain.StartCycleRequest) (*domain.StartCycleResponse, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := requirePositive(req.ContributionAmount, "contribution amount"); err != nil {
		return nil, err
	}
	if req.Frequency != domain.FrequencyWeekly && req.Frequency != domain.FrequencyMonthly {
		return nil, customError.NewValidation("frequency must be weekly or monthly", nil)
	}
	if req.StartDate.IsZero() {
		return nil, customError.NewValidation("start date is required", nil)
	}

	var cycle *domain.Cycle
	var contributions []*domain.Contribution

	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		// serializes concurrent starts for the same group
		if _, err := r.Groups.LockByID(ctx, actor.GroupID); err != nil {
			return storeError(err, "group")
		}

		_, err := r.Cycles.GetActiveByGroup(ctx, actor.GroupID)
		if err == nil {
			return customError.NewConflict("group already has an active cycle", customError.ErrCycleAlreadyActive)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return storeError(err, "cycle")
		}

		members, err := r.Members.ListByGroup(ctx, actor.GroupID, domain.MemberStatusApproved)
		if err != nil {
			return storeError(err, "members")
		}
		if len(members) == 0 {
			return customError.NewValidation("group has no approved members", customError.ErrNoApprovedMembers)
		}

		ids := make([]uuid.UUID, len(members))
		for i, m := range members {
			ids[i] = m.ID
		}
		s.shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })

		last, err := r.Cycles.LastCycleNumber(ctx, actor.GroupID)
		if err != nil {
			return storeError(err, "cycle")
		}

		cycle = domain.NewCycle(actor.GroupID, actor.MemberID, last+1, req.ContributionAmount, req.Frequency, req.StartDate, ids)
		if err := r.Cycles.Create(ctx, cycle); err != nil {
			if errors.Is(err, customError.ErrDuplicate) {
				return customError.NewConflict("group already has an active cycle", customError.ErrCycleAlreadyActive)
			}
			return storeError(err, "cycle")
		}

		contributions = make([]*domain.Contribution, len(ids))
		for i, id := range ids {
			contributions[i] = domain.NewContribution(actor.GroupID, cycle.ID, id, req.ContributionAmount, req.StartDate)
		}
		return storeError(r.Contributions.CreateBatch(ctx, contributions), "contributions")
	})
	if err != nil {
		return nil, err
	}

	for _, slot := range cycle.MemberOrder {
		notifyQuietly(ctx, s.notifier, notify.Notification{
			MemberID: slot.MemberID,
			Template: notify.TemplateCycleStarted,
			Variables: map[string]string{
				"cycle_number": strconv.Itoa(cycle.CycleNumber),
				"position":     strconv.Itoa(slot.Position),
				"payout_date":  day(slot.PayoutDate),
			},
		})
	}

	return &domain.StartCycleResponse{Cycle: cycle, Contributions: contributions}, nil
}

// ProgressCycle records the payout to the current recipient and advances the rotation.
func (s *CycleService) ProgressCycle(ctx context.Context, actor domain.Actor, cycleID uuid.UUID, req *domain.ProgressCycleRequest) (*domain.Cycle, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if req.AmountReceived.IsNegative() {
		return nil, customError.NewValidation("amount received must not be negative", nil)
	}

	var cycle *domain.Cycle
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		cycle, err = r.Cycles.GetByIDForUpdate(ctx, cycleID)
		if err != nil {
			return storeError(err, "cycle")
		}
		if err := actor.RequireGroup(cycle.GroupID); err != nil {
			return err
		}

		if err := cycle.Advance(req.MemberID, req.AmountReceived, s.now()); err != nil {
			return err
		}
		return storeError(r.Cycles.Update(ctx, cycle), "cycle")
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID: req.MemberID,
		Template: notify.TemplatePayoutReceived,
		Variables: map[string]string{
			"amount":       money(req.AmountReceived),
			"cycle_number": strconv.Itoa(cycle.CycleNumber),
		},
	})
	return cycle, nil
}

func (s *CycleService) GetActiveCycle(ctx context.Context, actor domain.Actor) (*domain.Cycle, error) {
	cycle, err := s.repos.Cycles.GetActiveByGroup(ctx, actor.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.NewNotFound("no active cycle", nil)
	}
	if err != nil {
		return nil, storeError(err, "cycle")
	}
	return cycle, nil
}

func (s *CycleService) GetCycle(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Cycle, error) {
	cycle, err := s.repos.Cycles.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "cycle")
	}
	if err := actor.RequireGroup(cycle.GroupID); err != nil {
		return nil, err
	}
	return cycle, nil
}

func (s *CycleService) ListCycles(ctx context.Context, actor domain.Actor) ([]*domain.Cycle, error) {
	cycles, err := s.repos.Cycles.ListByGroup(ctx, actor.GroupID)
	if err != nil {
		return nil, storeError(err, "cycles")
	}
	return cycles, nil
}

func (s *CycleService) ListContributions(ctx context.Context, actor domain.Actor, cycleID uuid.UUID) ([]*domain.Contribution, error) {
	if _, err := s.GetCycle(ctx, actor, cycleID); err != nil {
		return nil, err
	}
	contributions, err := s.repos.Contributions.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, storeError(err, "contributions")
	}
	return contributions, nil
}
