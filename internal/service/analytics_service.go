package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/repository"
)

// AnalyticsService is the read side: performance scores, leaderboard and dashboard.
type AnalyticsService struct {
	repos      repository.Repos
	cache      LeaderboardCache
	thresholds domain.PerformanceThresholds
}

func NewAnalyticsService(repos repository.Repos, cache LeaderboardCache, thresholds domain.PerformanceThresholds) *AnalyticsService {
	return &AnalyticsService{repos: repos, cache: cache, thresholds: thresholds}
}

func (s *AnalyticsService) MemberPerformance(ctx context.Context, actor domain.Actor, memberID uuid.UUID) (domain.MemberPerformance, error) {
	contributions, err := s.memberContributions(ctx, actor, memberID)
	if err != nil {
		return domain.MemberPerformance{}, err
	}
	return domain.ComputeMemberPerformance(memberID, contributions, s.thresholds), nil
}

func (s *AnalyticsService) MemberTimingPerformance(ctx context.Context, actor domain.Actor, memberID uuid.UUID) (domain.TimingPerformance, error) {
	contributions, err := s.memberContributions(ctx, actor, memberID)
	if err != nil {
		return domain.TimingPerformance{}, err
	}
	return domain.ComputeTimingPerformance(domain.ContributionRatings(memberID, contributions)), nil
}

func (s *AnalyticsService) MemberRepaymentPerformance(ctx context.Context, actor domain.Actor, memberID uuid.UUID) (domain.RepaymentPerformance, error) {
	if err := requireSelfOrAdmin(actor, memberID, actor.GroupID); err != nil {
		return domain.RepaymentPerformance{}, err
	}
	repayments, err := s.repos.Repayments.ListByMember(ctx, memberID)
	if err != nil {
		return domain.RepaymentPerformance{}, storeError(err, "repayments")
	}
	return domain.ComputeRepaymentPerformance(memberID, repayments), nil
}

// MemberReport combines the contribution, timing and repayment scores of one member.
func (s *AnalyticsService) MemberReport(ctx context.Context, actor domain.Actor, memberID uuid.UUID) (*domain.MemberAnalytics, error) {
	contributions, err := s.memberContributions(ctx, actor, memberID)
	if err != nil {
		return nil, err
	}
	repayments, err := s.MemberRepaymentPerformance(ctx, actor, memberID)
	if err != nil {
		return nil, err
	}

	return &domain.MemberAnalytics{
		Performance: domain.ComputeMemberPerformance(memberID, contributions, s.thresholds),
		Timing:      domain.ComputeTimingPerformance(domain.ContributionRatings(memberID, contributions)),
		Repayments:  repayments,
	}, nil
}

// TimingAnalytics tallies timing ratings for the group, optionally for one cycle.
func (s *AnalyticsService) TimingAnalytics(ctx context.Context, actor domain.Actor, cycleID *uuid.UUID) (domain.TimingAnalytics, error) {
	if err := actor.RequireAdmin(); err != nil {
		return domain.TimingAnalytics{}, err
	}

	var contributions []*domain.Contribution
	var err error
	if cycleID != nil {
		cycle, err := s.repos.Cycles.GetByID(ctx, *cycleID)
		if err != nil {
			return domain.TimingAnalytics{}, storeError(err, "cycle")
		}
		if err := actor.RequireGroup(cycle.GroupID); err != nil {
			return domain.TimingAnalytics{}, err
		}
		contributions, err = s.repos.Contributions.ListByCycle(ctx, *cycleID)
		if err != nil {
			return domain.TimingAnalytics{}, storeError(err, "contributions")
		}
	} else {
		contributions, err = s.repos.Contributions.ListByGroup(ctx, actor.GroupID)
		if err != nil {
			return domain.TimingAnalytics{}, storeError(err, "contributions")
		}
	}

	return domain.ComputeTimingAnalytics(contributions, cycleID), nil
}

// Leaderboard ranks approved members by savings. Results are cached per group;
// cache failures only cost a recomputation.
func (s *AnalyticsService) Leaderboard(ctx context.Context, actor domain.Actor) ([]domain.LeaderboardEntry, error) {
	groupID := actor.GroupID

	if s.cache != nil {
		entries, hit, err := s.cache.GetLeaderboard(ctx, groupID)
		if err != nil {
			log.Printf("[cache] warning: read leaderboard %s: %v", groupID, err)
		} else if hit {
			return entries, nil
		}
	}

	members, err := s.repos.Members.ListByGroup(ctx, groupID, domain.MemberStatusApproved)
	if err != nil {
		return nil, storeError(err, "members")
	}
	balances, err := s.repos.Savings.ListBalances(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "savings")
	}
	contributions, err := s.repos.Contributions.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "contributions")
	}

	byMember := make(map[uuid.UUID]decimal.Decimal, len(balances))
	for _, b := range balances {
		byMember[b.MemberID] = b.Balance
	}

	entries := make([]domain.LeaderboardEntry, 0, len(members))
	for _, m := range members {
		savings, ok := byMember[m.ID]
		if !ok {
			savings = decimal.Zero
		}
		entries = append(entries, domain.LeaderboardEntry{
			MemberID:     m.ID,
			Name:         m.Name,
			TotalSavings: savings,
			Performance:  domain.ComputeMemberPerformance(m.ID, contributions, s.thresholds),
			Timing:       domain.ComputeTimingPerformance(domain.ContributionRatings(m.ID, contributions)),
		})
	}
	entries = domain.RankLeaderboard(entries)

	if s.cache != nil {
		if err := s.cache.SetLeaderboard(ctx, groupID, entries); err != nil {
			log.Printf("[cache] warning: write leaderboard %s: %v", groupID, err)
		}
	}
	return entries, nil
}

// Dashboard summarises the admin's group.
func (s *AnalyticsService) Dashboard(ctx context.Context, actor domain.Actor) (*domain.AdminDashboard, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	groupID := actor.GroupID
	d := &domain.AdminDashboard{GroupID: groupID, OutstandingLoans: decimal.Zero}

	members, err := s.repos.Members.ListByGroup(ctx, groupID, "")
	if err != nil {
		return nil, storeError(err, "members")
	}
	for _, m := range members {
		if m.IsApproved() {
			d.ApprovedMembers++
		} else {
			d.PendingMembers++
		}
	}

	cycle, err := s.repos.Cycles.GetActiveByGroup(ctx, groupID)
	switch {
	case err == nil:
		d.ActiveCycle = &domain.CycleSummary{
			CycleID:                  cycle.ID,
			CycleNumber:              cycle.CycleNumber,
			Status:                   cycle.Status,
			Members:                  len(cycle.MemberOrder),
			CurrentRecipientPosition: cycle.CurrentRecipientPosition,
			PaidOut:                  cycle.PaidOutCount(),
		}
	case !errors.Is(err, sql.ErrNoRows):
		return nil, storeError(err, "cycle")
	}

	if d.TotalSavings, err = s.repos.Savings.GroupTotal(ctx, groupID); err != nil {
		return nil, storeError(err, "savings")
	}

	loans, err := s.repos.Loans.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "loans")
	}
	for _, l := range loans {
		if l.Status == domain.LoanStatusActive {
			d.ActiveLoans++
			d.OutstandingLoans = d.OutstandingLoans.Add(l.TotalDue)
		}
	}

	repayments, err := s.repos.Repayments.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "repayments")
	}
	for _, r := range repayments {
		if r.Status == domain.RepaymentStatusPending {
			d.PendingRepayments++
		}
	}

	withdrawals, err := s.repos.Savings.ListWithdrawals(ctx, groupID, domain.WithdrawalStatusPending)
	if err != nil {
		return nil, storeError(err, "withdrawals")
	}
	d.PendingWithdrawals = len(withdrawals)

	contributions, err := s.repos.Contributions.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, storeError(err, "contributions")
	}
	d.Timing = domain.ComputeTimingAnalytics(contributions, nil)

	return d, nil
}

func (s *AnalyticsService) memberContributions(ctx context.Context, actor domain.Actor, memberID uuid.UUID) ([]*domain.Contribution, error) {
	if err := requireSelfOrAdmin(actor, memberID, actor.GroupID); err != nil {
		return nil, err
	}
	contributions, err := s.repos.Contributions.ListByMember(ctx, memberID, actor.GroupID)
	if err != nil {
		return nil, storeError(err, "contributions")
	}
	return contributions, nil
}
