package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settled(memberID uuid.UUID, status string, daysLate int) *Contribution {
	return &Contribution{MemberID: memberID, Status: status, DaysLate: daysLate, TimingRating: TimingNotRated}
}

func TestComputeMemberPerformance(t *testing.T) {
	member := newID()

	build := func(onTime, late int) []*Contribution {
		var out []*Contribution
		for i := 0; i < onTime; i++ {
			out = append(out, settled(member, ContributionStatusPaid, 0))
		}
		for i := 0; i < late; i++ {
			out = append(out, settled(member, ContributionStatusLate, 3))
		}
		// pending rows and other members never count
		out = append(out, settled(member, ContributionStatusPending, 0), settled(newID(), ContributionStatusPaid, 0))
		return out
	}

	tests := []struct {
		name           string
		contributions  []*Contribution
		wantTotal      int
		wantPercentage float64
		wantRating     string
	}{
		{name: "nine of ten on time", contributions: build(9, 1), wantTotal: 10, wantPercentage: 90, wantRating: RatingExcellent},
		{name: "seven of ten on time", contributions: build(7, 3), wantTotal: 10, wantPercentage: 70, wantRating: RatingGood},
		{name: "five of ten on time", contributions: build(5, 5), wantTotal: 10, wantPercentage: 50, wantRating: RatingPoor},
		{name: "no history", contributions: nil, wantTotal: 0, wantPercentage: 0, wantRating: RatingNew},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeMemberPerformance(member, tt.contributions, DefaultPerformanceThresholds)
			assert.Equal(t, tt.wantTotal, p.Total)
			assert.Equal(t, tt.wantPercentage, p.Percentage)
			assert.Equal(t, tt.wantRating, p.Rating)
		})
	}
}

func TestComputeTimingPerformance(t *testing.T) {
	tests := []struct {
		name        string
		ratings     []string
		wantAverage float64
		wantBand    string
	}{
		{name: "mixed ratings", ratings: []string{TimingEarly, TimingEarly, TimingOnTime, TimingLate}, wantAverage: 2.25, wantBand: RatingGood},
		{name: "all early", ratings: []string{TimingEarly, TimingEarly}, wantAverage: 3, wantBand: RatingExcellent},
		{name: "on time and late", ratings: []string{TimingOnTime, TimingLate}, wantAverage: 1.5, wantBand: RatingFair},
		{name: "all late", ratings: []string{TimingLate, TimingLate, TimingNotRated}, wantAverage: 1, wantBand: RatingPoor},
		{name: "nothing rated", ratings: []string{TimingNotRated}, wantAverage: 0, wantBand: RatingNoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeTimingPerformance(tt.ratings)
			assert.Equal(t, tt.wantAverage, p.Average)
			assert.Equal(t, tt.wantBand, p.Band)
		})
	}
}

func TestComputeTimingAnalytics(t *testing.T) {
	a, b := newID(), newID()
	cycle1, cycle2 := newID(), newID()
	rows := []*Contribution{
		{MemberID: a, CycleID: cycle1, TimingRating: TimingEarly},
		{MemberID: a, CycleID: cycle1, TimingRating: TimingOnTime},
		{MemberID: b, CycleID: cycle1, TimingRating: TimingLate},
		{MemberID: b, CycleID: cycle1, TimingRating: TimingNotRated},
		{MemberID: b, CycleID: cycle2, TimingRating: TimingEarly},
	}

	all := ComputeTimingAnalytics(rows, nil)
	assert.Equal(t, 5, all.Total)
	assert.Equal(t, TimingCounts{Early: 2, OnTime: 1, Late: 1, NotRated: 1}, all.Counts)
	assert.Equal(t, 40.0, all.Percentages.Early)
	require.Len(t, all.Members, 2)

	scoped := ComputeTimingAnalytics(rows, &cycle1)
	assert.Equal(t, 4, scoped.Total)
	assert.Equal(t, 25.0, scoped.Percentages.NotRated)
	for _, m := range scoped.Members {
		if m.MemberID == b {
			assert.Equal(t, 1, m.Late)
			assert.Equal(t, 1, m.NotRated)
			assert.Equal(t, 0, m.Early)
		}
	}

	empty := ComputeTimingAnalytics(nil, nil)
	assert.Equal(t, 0, empty.Total)
	assert.NotNil(t, empty.Members)
}

func TestComputeRepaymentPerformance(t *testing.T) {
	m := newID()
	rows := []*LoanRepayment{
		{MemberID: m, Status: RepaymentStatusApproved, Amount: decimal.NewFromInt(300), TimingRating: TimingEarly},
		{MemberID: m, Status: RepaymentStatusApproved, Amount: decimal.NewFromInt(200), TimingRating: TimingOnTime},
		{MemberID: m, Status: RepaymentStatusRejected, Amount: decimal.NewFromInt(900), TimingRating: TimingNotRated},
		{MemberID: newID(), Status: RepaymentStatusApproved, Amount: decimal.NewFromInt(50), TimingRating: TimingLate},
	}

	p := ComputeRepaymentPerformance(m, rows)

	assert.Equal(t, 3, p.Submitted)
	assert.Equal(t, 2, p.Approved)
	assert.Equal(t, 1, p.Rejected)
	assert.True(t, p.TotalApproved.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 2.5, p.Timing.Average)
	assert.Equal(t, RatingExcellent, p.Timing.Band)
}

func TestRankLeaderboard(t *testing.T) {
	entries := []LeaderboardEntry{
		{MemberID: newID(), Name: "Wanjiku", TotalSavings: decimal.NewFromInt(100)},
		{MemberID: newID(), Name: "Achieng", TotalSavings: decimal.NewFromInt(500)},
		{MemberID: newID(), Name: "Baraka", TotalSavings: decimal.NewFromInt(100)},
	}

	ranked := RankLeaderboard(entries)

	assert.Equal(t, "Achieng", ranked[0].Name)
	assert.Equal(t, "Baraka", ranked[1].Name)
	assert.Equal(t, "Wanjiku", ranked[2].Name)
	for i, e := range ranked {
		assert.Equal(t, i+1, e.Rank)
	}
}
