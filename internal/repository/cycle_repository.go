package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const cycleColumns = `id, group_id, cycle_number, contribution_amount, frequency, start_date, end_date, member_order,
	status, current_recipient_position, total_expected_per_round, created_by, created_at, updated_at`

type cycleRepository struct {
	db sqlx.ExtContext
}

func NewCycleRepository(db sqlx.ExtContext) CycleRepository {
	return &cycleRepository{db: db}
}

// Create relies on the partial unique index ux_cycles_one_active_per_group;
// a second active cycle surfaces as ErrDuplicate.
func (r *cycleRepository) Create(ctx context.Context, cycle *domain.Cycle) error {
	query := `
		INSERT INTO table_banking_cycles (` + cycleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	now := time.Now()
	cycle.CreatedAt, cycle.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, query,
		cycle.ID,
		cycle.GroupID,
		cycle.CycleNumber,
		cycle.ContributionAmount,
		cycle.Frequency,
		cycle.StartDate,
		cycle.EndDate,
		cycle.MemberOrder,
		cycle.Status,
		cycle.CurrentRecipientPosition,
		cycle.TotalExpectedPerRound,
		cycle.CreatedBy,
		cycle.CreatedAt,
		cycle.UpdatedAt,
	)

	return translate(err)
}

func (r *cycleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cycle, error) {
	return r.getOne(ctx, `SELECT `+cycleColumns+` FROM table_banking_cycles WHERE id = $1`, id)
}

func (r *cycleRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Cycle, error) {
	return r.getOne(ctx, `SELECT `+cycleColumns+` FROM table_banking_cycles WHERE id = $1 FOR UPDATE`, id)
}

func (r *cycleRepository) GetActiveByGroup(ctx context.Context, groupID uuid.UUID) (*domain.Cycle, error) {
	return r.getOne(ctx, `SELECT `+cycleColumns+` FROM table_banking_cycles WHERE group_id = $1 AND status = 'active'`, groupID)
}

func (r *cycleRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Cycle, error) {
	var cycle domain.Cycle
	if err := sqlx.GetContext(ctx, r.db, &cycle, query, args...); err != nil {
		return nil, err
	}
	return &cycle, nil
}

func (r *cycleRepository) LastCycleNumber(ctx context.Context, groupID uuid.UUID) (int, error) {
	var last int
	err := sqlx.GetContext(ctx, r.db, &last,
		`SELECT COALESCE(MAX(cycle_number), 0) FROM table_banking_cycles WHERE group_id = $1`, groupID)
	return last, err
}

func (r *cycleRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Cycle, error) {
	query := `
		SELECT ` + cycleColumns + `
		FROM table_banking_cycles
		WHERE group_id = $1
		ORDER BY cycle_number DESC
	`

	var cycles []*domain.Cycle
	if err := sqlx.SelectContext(ctx, r.db, &cycles, query, groupID); err != nil {
		return nil, err
	}
	return cycles, nil
}

func (r *cycleRepository) Update(ctx context.Context, cycle *domain.Cycle) error {
	query := `
		UPDATE table_banking_cycles
		SET member_order = $2, status = $3, current_recipient_position = $4, end_date = $5, updated_at = $6
		WHERE id = $1
	`

	cycle.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		cycle.ID,
		cycle.MemberOrder,
		cycle.Status,
		cycle.CurrentRecipientPosition,
		cycle.EndDate,
		cycle.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}
