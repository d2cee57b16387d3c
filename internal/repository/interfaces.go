package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

// GroupRepository defines the interface for group data operations
type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	// GetByName looks a group up by its normalized name
	GetByName(ctx context.Context, name string) (*domain.Group, error)
	// LockByID takes a row lock on the group for the rest of the transaction
	LockByID(ctx context.Context, id uuid.UUID) (*domain.Group, error)
	Update(ctx context.Context, group *domain.Group) error
}

// MemberRepository defines the interface for member data operations
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Member, error)
	// ListByGroup returns members of a group; an empty status returns all of them
	ListByGroup(ctx context.Context, groupID uuid.UUID, status string) ([]*domain.Member, error)
	Update(ctx context.Context, member *domain.Member) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CycleRepository defines the interface for table-banking cycle data operations
type CycleRepository interface {
	Create(ctx context.Context, cycle *domain.Cycle) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cycle, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Cycle, error)
	GetActiveByGroup(ctx context.Context, groupID uuid.UUID) (*domain.Cycle, error)
	// LastCycleNumber returns 0 when the group has no cycles yet
	LastCycleNumber(ctx context.Context, groupID uuid.UUID) (int, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Cycle, error)
	Update(ctx context.Context, cycle *domain.Cycle) error
}

// ContributionRepository defines the interface for contribution data operations
type ContributionRepository interface {
	CreateBatch(ctx context.Context, contributions []*domain.Contribution) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error)
	// GetOutstandingForUpdate locks the member's pending or partially paid contribution in a cycle
	GetOutstandingForUpdate(ctx context.Context, memberID, cycleID uuid.UUID) (*domain.Contribution, error)
	Update(ctx context.Context, contribution *domain.Contribution) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Contribution, error)
	ListByCycle(ctx context.Context, cycleID uuid.UUID) ([]*domain.Contribution, error)
	ListByMember(ctx context.Context, memberID, groupID uuid.UUID) ([]*domain.Contribution, error)
	// ListOutstandingDueBefore returns pending or partially paid contributions due before the cutoff
	ListOutstandingDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Contribution, error)
}

// LoanRepository defines the interface for loan data operations
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	Update(ctx context.Context, loan *domain.Loan) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Loan, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error)
	// ListActiveDueBetween returns active loans whose due date falls in [from, to)
	ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Loan, error)
}

// RepaymentRepository defines the interface for loan repayment data operations
type RepaymentRepository interface {
	Create(ctx context.Context, repayment *domain.LoanRepayment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRepayment, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.LoanRepayment, error)
	Update(ctx context.Context, repayment *domain.LoanRepayment) error
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.LoanRepayment, error)
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error)
	ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.LoanRepayment, error)
}

// SavingsRepository defines the interface for savings ledger and withdrawal operations
type SavingsRepository interface {
	CreateEntry(ctx context.Context, entry *domain.SavingsEntry) error
	ListEntries(ctx context.Context, memberID uuid.UUID) ([]*domain.SavingsEntry, error)
	// GetBalance returns deposits minus withdrawals for a member
	GetBalance(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error)
	ListBalances(ctx context.Context, groupID uuid.UUID) ([]*domain.MemberBalance, error)
	GroupTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)

	CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error
	GetWithdrawalForUpdate(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error)
	UpdateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error
	ListWithdrawals(ctx context.Context, groupID uuid.UUID, status string) ([]*domain.WithdrawalRequest, error)
}

// Repos groups repositories bound to the same connection or transaction.
type Repos struct {
	Groups        GroupRepository
	Members       MemberRepository
	Cycles        CycleRepository
	Contributions ContributionRepository
	Loans         LoanRepository
	Repayments    RepaymentRepository
	Savings       SavingsRepository
}

// UnitOfWork runs fn with repositories sharing one transaction.
// fn returning an error rolls the whole transaction back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
