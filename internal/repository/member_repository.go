package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

const memberColumns = `id, name, phone, password_hash, group_id, role, status, is_admin, created_at, updated_at`

type memberRepository struct {
	db sqlx.ExtContext
}

func NewMemberRepository(db sqlx.ExtContext) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) Create(ctx context.Context, member *domain.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	member.Normalize()
	now := time.Now()
	member.CreatedAt, member.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.PasswordHash,
		member.GroupID,
		member.Role,
		member.Status,
		member.IsAdmin,
		member.CreatedAt,
		member.UpdatedAt,
	)

	return translate(err)
}

func (r *memberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var member domain.Member
	err := sqlx.GetContext(ctx, r.db, &member, `SELECT `+memberColumns+` FROM members WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	var member domain.Member
	err := sqlx.GetContext(ctx, r.db, &member, `SELECT `+memberColumns+` FROM members WHERE phone = $1`, phone)
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, status string) ([]*domain.Member, error) {
	query := `
		SELECT ` + memberColumns + `
		FROM members
		WHERE group_id = $1 AND ($2::text = '' OR status = $2::text)
		ORDER BY created_at, id
	`

	var members []*domain.Member
	if err := sqlx.SelectContext(ctx, r.db, &members, query, groupID, status); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *memberRepository) Update(ctx context.Context, member *domain.Member) error {
	query := `
		UPDATE members
		SET name = $2, phone = $3, password_hash = $4, role = $5, status = $6, is_admin = $7, updated_at = $8
		WHERE id = $1
	`

	member.Normalize()
	member.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		member.ID,
		member.Name,
		member.Phone,
		member.PasswordHash,
		member.Role,
		member.Status,
		member.IsAdmin,
		member.UpdatedAt,
	)
	if err != nil {
		return translate(err)
	}
	return requireAffected(res)
}

func (r *memberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// requireAffected turns an update that touched nothing into sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
