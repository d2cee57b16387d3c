package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const groupColumns = `id, name, admin_id, interest_rate, min_loan_savings, group_type, subscription_status, trial_ends_at, created_at, updated_at`

type groupRepository struct {
	db sqlx.ExtContext
}

func NewGroupRepository(db sqlx.ExtContext) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	query := `
		INSERT INTO groups (` + groupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	group.CreatedAt, group.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, query,
		group.ID,
		group.Name,
		group.AdminID,
		group.InterestRate,
		group.MinLoanSavings,
		group.GroupType,
		group.SubscriptionStatus,
		group.TrialEndsAt,
		group.CreatedAt,
		group.UpdatedAt,
	)

	return translate(err)
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return r.getOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1`, id)
}

func (r *groupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	return r.getOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE name = $1`, name)
}

func (r *groupRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	return r.getOne(ctx, `SELECT `+groupColumns+` FROM groups WHERE id = $1 FOR UPDATE`, id)
}

func (r *groupRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Group, error) {
	var group domain.Group
	if err := sqlx.GetContext(ctx, r.db, &group, query, args...); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) Update(ctx context.Context, group *domain.Group) error {
	query := `
		UPDATE groups
		SET admin_id = $2, interest_rate = $3, min_loan_savings = $4, group_type = $5,
		    subscription_status = $6, trial_ends_at = $7, updated_at = $8
		WHERE id = $1
	`

	group.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		group.ID,
		group.AdminID,
		group.InterestRate,
		group.MinLoanSavings,
		group.GroupType,
		group.SubscriptionStatus,
		group.TrialEndsAt,
		group.UpdatedAt,
	)

	return translate(err)
}
