package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const repaymentColumns = `id, loan_id, group_id, member_id, amount, paid_date, status, timing_rating, confirmed_at, confirmed_by, created_at`

type repaymentRepository struct {
	db sqlx.ExtContext
}

func NewRepaymentRepository(db sqlx.ExtContext) RepaymentRepository {
	return &repaymentRepository{db: db}
}

func (r *repaymentRepository) Create(ctx context.Context, p *domain.LoanRepayment) error {
	query := `
		INSERT INTO loan_repayments (` + repaymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if p.TimingRating == "" {
		p.TimingRating = domain.TimingNotRated
	}
	p.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.LoanID,
		p.GroupID,
		p.MemberID,
		p.Amount,
		p.PaidDate,
		p.Status,
		p.TimingRating,
		p.ConfirmedAt,
		p.ConfirmedBy,
		p.CreatedAt,
	)

	return translate(err)
}

func (r *repaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRepayment, error) {
	return r.getOne(ctx, `SELECT `+repaymentColumns+` FROM loan_repayments WHERE id = $1`, id)
}

func (r *repaymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.LoanRepayment, error) {
	return r.getOne(ctx, `SELECT `+repaymentColumns+` FROM loan_repayments WHERE id = $1 FOR UPDATE`, id)
}

func (r *repaymentRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.LoanRepayment, error) {
	var p domain.LoanRepayment
	if err := sqlx.GetContext(ctx, r.db, &p, query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repaymentRepository) Update(ctx context.Context, p *domain.LoanRepayment) error {
	query := `
		UPDATE loan_repayments
		SET status = $2, timing_rating = $3, confirmed_at = $4, confirmed_by = $5
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, p.ID, p.Status, p.TimingRating, p.ConfirmedAt, p.ConfirmedBy)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *repaymentRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.LoanRepayment, error) {
	return r.list(ctx, `SELECT `+repaymentColumns+` FROM loan_repayments WHERE group_id = $1 ORDER BY paid_date DESC`, groupID)
}

func (r *repaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error) {
	return r.list(ctx, `SELECT `+repaymentColumns+` FROM loan_repayments WHERE loan_id = $1 ORDER BY paid_date DESC`, loanID)
}

func (r *repaymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.LoanRepayment, error) {
	return r.list(ctx, `SELECT `+repaymentColumns+` FROM loan_repayments WHERE member_id = $1 ORDER BY paid_date DESC`, memberID)
}

func (r *repaymentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.LoanRepayment, error) {
	var out []*domain.LoanRepayment
	if err := sqlx.SelectContext(ctx, r.db, &out, query, args...); err != nil {
		return nil, err
	}
	return out, nil
}
