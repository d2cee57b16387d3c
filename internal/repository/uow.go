package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// NewRepos binds every repository to the same executor, a *sqlx.DB or a *sqlx.Tx.
func NewRepos(db sqlx.ExtContext) Repos {
	return Repos{
		Groups:        NewGroupRepository(db),
		Members:       NewMemberRepository(db),
		Cycles:        NewCycleRepository(db),
		Contributions: NewContributionRepository(db),
		Loans:         NewLoanRepository(db),
		Repayments:    NewRepaymentRepository(db),
		Savings:       NewSavingsRepository(db),
	}
}

type sqlxUnitOfWork struct {
	db *sqlx.DB
}

func NewUnitOfWork(db *sqlx.DB) UnitOfWork {
	return &sqlxUnitOfWork{db: db}
}

func (u *sqlxUnitOfWork) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

const uniqueViolation = "23505"

// translate maps driver errors onto package sentinels.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", customError.ErrDuplicate, pqErr.Constraint)
	}
	return err
}
