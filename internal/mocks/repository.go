package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/repository"
)

type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) GetByName(ctx context.Context, name string) (*domain.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) LockByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Group), args.Error(1)
}

func (m *MockGroupRepository) Update(ctx context.Context, group *domain.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) GetByPhone(ctx context.Context, phone string) (*domain.Member, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, status string) ([]*domain.Member, error) {
	args := m.Called(ctx, groupID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *domain.Member) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCycleRepository struct {
	mock.Mock
}

func (m *MockCycleRepository) Create(ctx context.Context, cycle *domain.Cycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

func (m *MockCycleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cycle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *MockCycleRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Cycle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *MockCycleRepository) GetActiveByGroup(ctx context.Context, groupID uuid.UUID) (*domain.Cycle, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cycle), args.Error(1)
}

func (m *MockCycleRepository) LastCycleNumber(ctx context.Context, groupID uuid.UUID) (int, error) {
	args := m.Called(ctx, groupID)
	return args.Int(0), args.Error(1)
}

func (m *MockCycleRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Cycle, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Cycle), args.Error(1)
}

func (m *MockCycleRepository) Update(ctx context.Context, cycle *domain.Cycle) error {
	args := m.Called(ctx, cycle)
	return args.Error(0)
}

type MockContributionRepository struct {
	mock.Mock
}

func (m *MockContributionRepository) CreateBatch(ctx context.Context, contributions []*domain.Contribution) error {
	args := m.Called(ctx, contributions)
	return args.Error(0)
}

func (m *MockContributionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contribution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) GetOutstandingForUpdate(ctx context.Context, memberID, cycleID uuid.UUID) (*domain.Contribution, error) {
	args := m.Called(ctx, memberID, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) Update(ctx context.Context, contribution *domain.Contribution) error {
	args := m.Called(ctx, contribution)
	return args.Error(0)
}

func (m *MockContributionRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Contribution, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) ListByCycle(ctx context.Context, cycleID uuid.UUID) ([]*domain.Contribution, error) {
	args := m.Called(ctx, cycleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) ListByMember(ctx context.Context, memberID, groupID uuid.UUID) ([]*domain.Contribution, error) {
	args := m.Called(ctx, memberID, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

func (m *MockContributionRepository) ListOutstandingDueBefore(ctx context.Context, cutoff time.Time) ([]*domain.Contribution, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contribution), args.Error(1)
}

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *domain.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListActiveDueBetween(ctx context.Context, from, to time.Time) ([]*domain.Loan, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Loan), args.Error(1)
}

type MockRepaymentRepository struct {
	mock.Mock
}

func (m *MockRepaymentRepository) Create(ctx context.Context, repayment *domain.LoanRepayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanRepayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRepayment), args.Error(1)
}

func (m *MockRepaymentRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.LoanRepayment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoanRepayment), args.Error(1)
}

func (m *MockRepaymentRepository) Update(ctx context.Context, repayment *domain.LoanRepayment) error {
	args := m.Called(ctx, repayment)
	return args.Error(0)
}

func (m *MockRepaymentRepository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.LoanRepayment, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRepayment), args.Error(1)
}

func (m *MockRepaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanRepayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRepayment), args.Error(1)
}

func (m *MockRepaymentRepository) ListByMember(ctx context.Context, memberID uuid.UUID) ([]*domain.LoanRepayment, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LoanRepayment), args.Error(1)
}

type MockSavingsRepository struct {
	mock.Mock
}

func (m *MockSavingsRepository) CreateEntry(ctx context.Context, entry *domain.SavingsEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockSavingsRepository) ListEntries(ctx context.Context, memberID uuid.UUID) ([]*domain.SavingsEntry, error) {
	args := m.Called(ctx, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.SavingsEntry), args.Error(1)
}

func (m *MockSavingsRepository) GetBalance(ctx context.Context, memberID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSavingsRepository) ListBalances(ctx context.Context, groupID uuid.UUID) ([]*domain.MemberBalance, error) {
	args := m.Called(ctx, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MemberBalance), args.Error(1)
}

func (m *MockSavingsRepository) GroupTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSavingsRepository) CreateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockSavingsRepository) GetWithdrawalForUpdate(ctx context.Context, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WithdrawalRequest), args.Error(1)
}

func (m *MockSavingsRepository) UpdateWithdrawal(ctx context.Context, w *domain.WithdrawalRequest) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockSavingsRepository) ListWithdrawals(ctx context.Context, groupID uuid.UUID, status string) ([]*domain.WithdrawalRequest, error) {
	args := m.Called(ctx, groupID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WithdrawalRequest), args.Error(1)
}

// MockRepos bundles one mock per repository.
type MockRepos struct {
	Groups        *MockGroupRepository
	Members       *MockMemberRepository
	Cycles        *MockCycleRepository
	Contributions *MockContributionRepository
	Loans         *MockLoanRepository
	Repayments    *MockRepaymentRepository
	Savings       *MockSavingsRepository
}

func NewMockRepos() *MockRepos {
	return &MockRepos{
		Groups:        &MockGroupRepository{},
		Members:       &MockMemberRepository{},
		Cycles:        &MockCycleRepository{},
		Contributions: &MockContributionRepository{},
		Loans:         &MockLoanRepository{},
		Repayments:    &MockRepaymentRepository{},
		Savings:       &MockSavingsRepository{},
	}
}

func (r *MockRepos) Repos() repository.Repos {
	return repository.Repos{
		Groups:        r.Groups,
		Members:       r.Members,
		Cycles:        r.Cycles,
		Contributions: r.Contributions,
		Loans:         r.Loans,
		Repayments:    r.Repayments,
		Savings:       r.Savings,
	}
}

func (r *MockRepos) AssertExpectations(t mock.TestingT) {
	r.Groups.AssertExpectations(t)
	r.Members.AssertExpectations(t)
	r.Cycles.AssertExpectations(t)
	r.Contributions.AssertExpectations(t)
	r.Loans.AssertExpectations(t)
	r.Repayments.AssertExpectations(t)
	r.Savings.AssertExpectations(t)
}

// UnitOfWork runs fn against the mocks without a real transaction.
// Committed counts calls whose fn returned nil.
type UnitOfWork struct {
	Repos      *MockRepos
	Committed  int
	RolledBack int
}

func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(r repository.Repos) error) error {
	if err := fn(u.Repos.Repos()); err != nil {
		u.RolledBack++
		return err
	}
	u.Committed++
	return nil
}
