package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const (
	savingsColumns    = `id, group_id, member_id, amount, entry_type, reference, recorded_by, created_at`
	withdrawalColumns = `id, group_id, member_id, amount, purpose, loan_id, status, processed_by, processed_at, created_at`
)

// signedAmount counts deposits positive and withdrawals negative.
const signedAmount = `CASE WHEN entry_type = 'deposit' THEN amount ELSE -amount END`

type savingsRepository struct {
	db sqlx.ExtContext
}

func NewSavingsRepository(db sqlx.ExtContext) SavingsRepository {
	return &savingsRepository{db: db}
}

func (r *savingsRepository) CreateEntry(ctx context.Context, e *domain.SavingsEntry) error {
	query := `
		INSERT INTO savings_entries (` + savingsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	e.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.GroupID,
		e.MemberID,
		e.Amount,
		e.EntryType,
		e.Reference,
		e.RecordedBy,
		e.CreatedAt,
	)

	return translate(err)
}

func (r *savingsRepository) ListEntries(ctx context.Context, memberID uuid.UUID) ([]*domain.SavingsEntry, error) {
	var out []*domain.SavingsEntry
	err := sqlx.SelectContext(ctx, r.db, &out,
		`SELECT `+savingsColumns+` FROM savings_entries WHERE member_id = $1 ORDER BY created_at DESC`, memberID)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *savingsRepository) GetBalance(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, r.db, &balance,
		`SELECT COALESCE(SUM(`+signedAmount+`), 0) FROM savings_entries WHERE member_id = $1`, memberID)
	return balance, err
}

func (r *savingsRepository) ListBalances(ctx context.Context, groupID uuid.UUID) ([]*domain.MemberBalance, error) {
	query := `
		SELECT member_id, COALESCE(SUM(` + signedAmount + `), 0) AS balance
		FROM savings_entries
		WHERE group_id = $1
		GROUP BY member_id
	`

	var out []*domain.MemberBalance
	if err := sqlx.SelectContext(ctx, r.db, &out, query, groupID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *savingsRepository) GroupTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := sqlx.GetContext(ctx, r.db, &total,
		`SELECT COALESCE(SUM(`+signedAmount+`), 0) FROM savings_entries WHERE group_id = $1`, groupID)
	return total, err
}

func (r *savingsRepository) CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	query := `
		INSERT INTO withdrawal_requests (` + withdrawalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	w.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		w.ID,
		w.GroupID,
		w.MemberID,
		w.Amount,
		w.Purpose,
		w.LoanID,
		w.Status,
		w.ProcessedBy,
		w.ProcessedAt,
		w.CreatedAt,
	)

	return translate(err)
}

func (r *savingsRepository) GetWithdrawalForUpdate(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	var w domain.WithdrawalRequest
	err := sqlx.GetContext(ctx, r.db, &w,
		`SELECT `+withdrawalColumns+` FROM withdrawal_requests WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *savingsRepository) UpdateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE withdrawal_requests SET status = $2, processed_by = $3, processed_at = $4 WHERE id = $1`,
		w.ID, w.Status, w.ProcessedBy, w.ProcessedAt)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *savingsRepository) ListWithdrawals(ctx context.Context, groupID uuid.UUID, status string) ([]*domain.WithdrawalRequest, error) {
	query := `
		SELECT ` + withdrawalColumns + `
		FROM withdrawal_requests
		WHERE group_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at DESC
	`

	var out []*domain.WithdrawalRequest
	if err := sqlx.SelectContext(ctx, r.db, &out, query, groupID, status); err != nil {
		return nil, err
	}
	return out, nil
}
