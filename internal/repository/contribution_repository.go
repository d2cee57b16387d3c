package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const contributionColumns = `id, group_id, cycle_id, member_id, expected_amount, paid_amount, due_date, paid_date, status,
	days_late, timing_rating, rating_notes, rated_by, rating_date, recorded_by, notes, created_at, updated_at`

type contributionRepository struct {
	db sqlx.ExtContext
}

func NewContributionRepository(db sqlx.ExtContext) ContributionRepository {
	return &contributionRepository{db: db}
}

func (r *contributionRepository) CreateBatch(ctx context.Context, contributions []*domain.Contribution) error {
	query := `
		INSERT INTO contributions (` + contributionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	now := time.Now()
	for _, c := range contributions {
		c.Derive()
		c.CreatedAt, c.UpdatedAt = now, now

		_, err := r.db.ExecContext(ctx, query,
			c.ID,
			c.GroupID,
			c.CycleID,
			c.MemberID,
			c.ExpectedAmount,
			c.PaidAmount,
			c.DueDate,
			c.PaidDate,
			c.Status,
			c.DaysLate,
			c.TimingRating,
			c.RatingNotes,
			c.RatedBy,
			c.RatingDate,
			c.RecordedBy,
			c.Notes,
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			return translate(err)
		}
	}

	return nil
}

func (r *contributionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	var c domain.Contribution
	if err := sqlx.GetContext(ctx, r.db, &c, `SELECT `+contributionColumns+` FROM contributions WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contributionRepository) GetOutstandingForUpdate(ctx context.Context, memberID, cycleID uuid.UUID) (*domain.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE member_id = $1 AND cycle_id = $2 AND status IN ('pending', 'partially_paid')
		ORDER BY due_date
		LIMIT 1
		FOR UPDATE
	`

	var c domain.Contribution
	if err := sqlx.GetContext(ctx, r.db, &c, query, memberID, cycleID); err != nil {
		return nil, err
	}
	return &c, nil
}

// Update re-derives status and days_late before writing.
func (r *contributionRepository) Update(ctx context.Context, c *domain.Contribution) error {
	query := `
		UPDATE contributions
		SET paid_amount = $2, paid_date = $3, status = $4, days_late = $5, timing_rating = $6,
		    rating_notes = $7, rated_by = $8, rating_date = $9, recorded_by = $10, notes = $11, updated_at = $12
		WHERE id = $1
	`

	c.Derive()
	c.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.PaidAmount,
		c.PaidDate,
		c.Status,
		c.DaysLate,
		c.TimingRating,
		c.RatingNotes,
		c.RatedBy,
		c.RatingDate,
		c.RecordedBy,
		c.Notes,
		c.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *contributionRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Contribution, error) {
	return r.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE group_id = $1 ORDER BY due_date, id`, groupID)
}

func (r *contributionRepository) ListByCycle(ctx context.Context, cycleID uuid.UUID) ([]*domain.Contribution, error) {
	return r.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE cycle_id = $1 ORDER BY due_date, id`, cycleID)
}

func (r *contributionRepository) ListByMember(ctx context.Context, memberID, groupID uuid.UUID) ([]*domain.Contribution, error) {
	return r.list(ctx, `SELECT `+contributionColumns+` FROM contributions WHERE member_id = $1 AND group_id = $2 ORDER BY due_date, id`, memberID, groupID)
}

func (r *contributionRepository) ListOutstandingDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Contribution, error) {
	query := `
		SELECT ` + contributionColumns + `
		FROM contributions
		WHERE status IN ('pending', 'partially_paid') AND due_date < $1
		ORDER BY due_date, id
	`
	return r.list(ctx, query, cutoff)
}

func (r *contributionRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Contribution, error) {
	var out []*domain.Contribution
	if err := sqlx.SelectContext(ctx, r.db, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
