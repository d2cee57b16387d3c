package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const loanColumns = `id, group_id, member_id, amount, interest_rate, fees, due_date, last_due_date, total_due,
	installment_number, installment_amount, status, reason, created_at, updated_at`

type loanRepository struct {
	db sqlx.ExtContext
}

func NewLoanRepository(db sqlx.ExtContext) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	now := time.Now()
	loan.CreatedAt, loan.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.GroupID,
		loan.MemberID,
		loan.Amount,
		loan.InterestRate,
		loan.Fees,
		loan.DueDate,
		loan.LastDueDate,
		loan.TotalDue,
		loan.InstallmentNumber,
		loan.InstallmentAmount,
		loan.Status,
		loan.Reason,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return translate(err)
}

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.getOne(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)
}

func (r *loanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	return r.getOne(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)
}

func (r *loanRepository) getOne(ctx context.Context, query string, args ...interface{}) (*domain.Loan, error) {
	var loan domain.Loan
	if err := sqlx.GetContext(ctx, r.db, &loan, query, args...); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET amount = $2, interest_rate = $3, fees = $4, due_date = $5, last_due_date = $6, total_due = $7,
		    installment_number = $8, installment_amount = $9, status = $10, updated_at = $11
		WHERE id = $1
	`

	loan.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.Amount,
		loan.InterestRate,
		loan.Fees,
		loan.DueDate,
		loan.LastDueDate,
		loan.TotalDue,
		loan.InstallmentNumber,
		loan.InstallmentAmount,
		loan.Status,
		loan.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *loanRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans WHERE group_id = $1 ORDER BY created_at DESC`, groupID)
}

func (r *loanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	return r.list(ctx, `SELECT `+loanColumns+` FROM loans WHERE member_id = $1 ORDER BY created_at DESC`, memberID)
}

func (r *loanRepository) ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = 'active' AND due_date >= $1 AND due_date < $2
		ORDER BY due_date
	`
	return r.list(ctx, query, from, to)
}

func (r *loanRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, args...); err != nil {
		return nil, err
	}
	return loans, nil
}
