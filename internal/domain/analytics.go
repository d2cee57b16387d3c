package domain

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jazanyumba/chama-vault/pkg/utils"
)

const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingFair      = "fair"
	RatingPoor      = "poor"
	RatingNew       = "new"
	RatingNoData    = "no_data"
)

// PerformanceThresholds are the on-time percentage cut-offs for the payment rating.
type PerformanceThresholds struct {
	Excellent float64
	Good      float64
}

var DefaultPerformanceThresholds = PerformanceThresholds{Excellent: 80, Good: 60}

type MemberPerformance struct {
	MemberID   uuid.UUID `json:"member_id"`
	Total      int       `json:"total"`
	OnTime     int       `json:"on_time"`
	Late       int       `json:"late"`
	Percentage float64   `json:"percentage"`
	Rating     string    `json:"rating"`
}

// ComputeMemberPerformance scores settled (paid or late) contributions.
// Members without settled contributions are rated "new".
func ComputeMemberPerformance(memberID uuid.UUID, contributions []*Contribution, th PerformanceThresholds) MemberPerformance {
	p := MemberPerformance{MemberID: memberID, Rating: RatingNew}

	for _, c := range contributions {
		if c.MemberID != memberID {
			continue
		}
		if c.Status != ContributionStatusPaid && c.Status != ContributionStatusLate {
			continue
		}
		p.Total++
		if c.Status == ContributionStatusPaid && c.DaysLate == 0 {
			p.OnTime++
		}
		if c.DaysLate > 0 {
			p.Late++
		}
	}

	if p.Total == 0 {
		return p
	}

	p.Percentage = utils.Percentage(p.OnTime, p.Total)
	switch {
	case p.Percentage >= th.Excellent:
		p.Rating = RatingExcellent
	case p.Percentage >= th.Good:
		p.Rating = RatingGood
	default:
		p.Rating = RatingPoor
	}
	return p
}

type TimingCounts struct {
	Early    int `json:"early"`
	OnTime   int `json:"on_time"`
	Late     int `json:"late"`
	NotRated int `json:"not_rated"`
}

func (c *TimingCounts) Add(rating string) {
	switch rating {
	case TimingEarly:
		c.Early++
	case TimingOnTime:
		c.OnTime++
	case TimingLate:
		c.Late++
	default:
		c.NotRated++
	}
}

func (c TimingCounts) Total() int {
	return c.Early + c.OnTime + c.Late + c.NotRated
}

type TimingPercentages struct {
	Early    float64 `json:"early"`
	OnTime   float64 `json:"on_time"`
	Late     float64 `json:"late"`
	NotRated float64 `json:"not_rated"`
}

type MemberTimingBreakdown struct {
	MemberID uuid.UUID `json:"member_id"`
	TimingCounts
}

type TimingAnalytics struct {
	CycleID     *uuid.UUID              `json:"cycle_id,omitempty"`
	Total       int                     `json:"total"`
	Counts      TimingCounts            `json:"counts"`
	Percentages TimingPercentages       `json:"percentages"`
	Members     []MemberTimingBreakdown `json:"members"`
}

// ComputeTimingAnalytics tallies timing ratings, optionally restricted to one cycle.
func ComputeTimingAnalytics(contributions []*Contribution, cycleID *uuid.UUID) TimingAnalytics {
	a := TimingAnalytics{CycleID: cycleID, Members: []MemberTimingBreakdown{}}
	perMember := make(map[uuid.UUID]*TimingCounts)

	for _, c := range contributions {
		if cycleID != nil && c.CycleID != *cycleID {
			continue
		}
		a.Counts.Add(c.TimingRating)
		mc, ok := perMember[c.MemberID]
		if !ok {
			mc = &TimingCounts{}
			perMember[c.MemberID] = mc
		}
		mc.Add(c.TimingRating)
	}

	a.Total = a.Counts.Total()
	a.Percentages = TimingPercentages{
		Early:    utils.Percentage(a.Counts.Early, a.Total),
		OnTime:   utils.Percentage(a.Counts.OnTime, a.Total),
		Late:     utils.Percentage(a.Counts.Late, a.Total),
		NotRated: utils.Percentage(a.Counts.NotRated, a.Total),
	}

	for id, mc := range perMember {
		a.Members = append(a.Members, MemberTimingBreakdown{MemberID: id, TimingCounts: *mc})
	}
	sort.Slice(a.Members, func(i, j int) bool {
		return a.Members[i].MemberID.String() < a.Members[j].MemberID.String()
	})
	return a
}

var timingWeights = map[string]int{
	TimingEarly:  3,
	TimingOnTime: 2,
	TimingLate:   1,
}

type TimingPerformance struct {
	Rated   int     `json:"rated"`
	Early   int     `json:"early"`
	OnTime  int     `json:"on_time"`
	Late    int     `json:"late"`
	Average float64 `json:"average"`
	Band    string  `json:"band"`
}

// ComputeTimingPerformance averages rated entries with early=3, on_time=2, late=1.
// Unrated entries are ignored.
func ComputeTimingPerformance(ratings []string) TimingPerformance {
	p := TimingPerformance{Band: RatingNoData}
	sum := 0

	for _, r := range ratings {
		w, ok := timingWeights[r]
		if !ok {
			continue
		}
		p.Rated++
		sum += w
		switch r {
		case TimingEarly:
			p.Early++
		case TimingOnTime:
			p.OnTime++
		case TimingLate:
			p.Late++
		}
	}

	if p.Rated == 0 {
		return p
	}

	p.Average = math.Round(float64(sum)/float64(p.Rated)*100) / 100
	switch {
	case p.Average >= 2.5:
		p.Band = RatingExcellent
	case p.Average >= 2.0:
		p.Band = RatingGood
	case p.Average >= 1.5:
		p.Band = RatingFair
	default:
		p.Band = RatingPoor
	}
	return p
}

// ContributionRatings extracts the timing ratings of one member's contributions.
func ContributionRatings(memberID uuid.UUID, contributions []*Contribution) []string {
	out := make([]string, 0, len(contributions))
	for _, c := range contributions {
		if c.MemberID == memberID {
			out = append(out, c.TimingRating)
		}
	}
	return out
}

// RepaymentRatings extracts the timing ratings of one member's repayments.
func RepaymentRatings(memberID uuid.UUID, repayments []*LoanRepayment) []string {
	out := make([]string, 0, len(repayments))
	for _, r := range repayments {
		if r.MemberID == memberID {
			out = append(out, r.TimingRating)
		}
	}
	return out
}

type RepaymentPerformance struct {
	MemberID      uuid.UUID         `json:"member_id"`
	Submitted     int               `json:"submitted"`
	Approved      int               `json:"approved"`
	Rejected      int               `json:"rejected"`
	TotalApproved decimal.Decimal   `json:"total_approved"`
	Timing        TimingPerformance `json:"timing"`
}

// ComputeRepaymentPerformance mirrors the contribution timing score on the repayment side.
func ComputeRepaymentPerformance(memberID uuid.UUID, repayments []*LoanRepayment) RepaymentPerformance {
	p := RepaymentPerformance{MemberID: memberID, TotalApproved: decimal.Zero}
	for _, r := range repayments {
		if r.MemberID != memberID {
			continue
		}
		p.Submitted++
		switch r.Status {
		case RepaymentStatusApproved:
			p.Approved++
			p.TotalApproved = p.TotalApproved.Add(r.Amount)
		case RepaymentStatusRejected:
			p.Rejected++
		}
	}
	p.Timing = ComputeTimingPerformance(RepaymentRatings(memberID, repayments))
	return p
}

type LeaderboardEntry struct {
	Rank         int               `json:"rank"`
	MemberID     uuid.UUID         `json:"member_id"`
	Name         string            `json:"name"`
	TotalSavings decimal.Decimal   `json:"total_savings"`
	Performance  MemberPerformance `json:"performance"`
	Timing       TimingPerformance `json:"timing"`
}

// RankLeaderboard orders entries by savings descending, then name, then id, and assigns ranks.
func RankLeaderboard(entries []LeaderboardEntry) []LeaderboardEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.TotalSavings.Equal(b.TotalSavings) {
			return a.TotalSavings.GreaterThan(b.TotalSavings)
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.MemberID.String() < b.MemberID.String()
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

type CycleSummary struct {
	CycleID                  uuid.UUID `json:"cycle_id"`
	CycleNumber              int       `json:"cycle_number"`
	Status                   string    `json:"status"`
	Members                  int       `json:"members"`
	CurrentRecipientPosition int       `json:"current_recipient_position"`
	PaidOut                  int       `json:"paid_out"`
}

type AdminDashboard struct {
	GroupID            uuid.UUID       `json:"group_id"`
	ApprovedMembers    int             `json:"approved_members"`
	PendingMembers     int             `json:"pending_members"`
	ActiveCycle        *CycleSummary   `json:"active_cycle,omitempty"`
	TotalSavings       decimal.Decimal `json:"total_savings"`
	OutstandingLoans   decimal.Decimal `json:"outstanding_loans"`
	ActiveLoans        int             `json:"active_loans"`
	PendingRepayments  int             `json:"pending_repayments"`
	PendingWithdrawals int             `json:"pending_withdrawals"`
	Timing             TimingAnalytics `json:"timing"`
}

// MemberAnalytics is the per-member report combining contribution and repayment scores.
type MemberAnalytics struct {
	Performance MemberPerformance    `json:"performance"`
	Timing      TimingPerformance    `json:"timing"`
	Repayments  RepaymentPerformance `json:"repayments"`
}
