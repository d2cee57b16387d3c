package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// SavingsService keeps the savings ledger and processes withdrawal requests.
type SavingsService struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	notifier notify.Sender
	cache    LeaderboardCache
	now      func() time.Time
}

func NewSavingsService(repos repository.Repos, uow repository.UnitOfWork, notifier notify.Sender, cache LeaderboardCache) *SavingsService {
	return &SavingsService{
		repos:    repos,
		uow:      uow,
		notifier: notifier,
		cache:    cache,
		now:      time.Now,
	}
}

// RecordDeposit appends a deposit to a member's savings.
func (s *SavingsService) RecordDeposit(ctx context.Context, actor domain.Actor, req *domain.DepositRequest) (*domain.SavingsEntry, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}

	member, err := s.repos.Members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, storeError(err, "member")
	}
	if err := actor.RequireGroup(member.GroupID); err != nil {
		return nil, err
	}

	entry := &domain.SavingsEntry{
		ID:         uuid.New(),
		GroupID:    member.GroupID,
		MemberID:   member.ID,
		Amount:     req.Amount,
		EntryType:  domain.SavingsEntryDeposit,
		Reference:  req.Reference,
		RecordedBy: actor.MemberID,
	}
	if err := s.repos.Savings.CreateEntry(ctx, entry); err != nil {
		return nil, storeError(err, "savings entry")
	}

	invalidateLeaderboard(ctx, s.cache, member.GroupID)
	return entry, nil
}

func (s *SavingsService) GetBalance(ctx context.Context, actor domain.Actor, memberID uuid.UUID) (*domain.BalanceResponse, error) {
	if err := s.requireMemberAccess(ctx, actor, memberID); err != nil {
		return nil, err
	}

	balance, err := s.repos.Savings.GetBalance(ctx, memberID)
	if err != nil {
		return nil, storeError(err, "savings")
	}
	return &domain.BalanceResponse{MemberID: memberID, Balance: balance}, nil
}

func (s *SavingsService) ListEntries(ctx context.Context, actor domain.Actor, memberID uuid.UUID) ([]*domain.SavingsEntry, error) {
	if err := s.requireMemberAccess(ctx, actor, memberID); err != nil {
		return nil, err
	}

	entries, err := s.repos.Savings.ListEntries(ctx, memberID)
	if err != nil {
		return nil, storeError(err, "savings")
	}
	return entries, nil
}

// RequestWithdrawal files a pending withdrawal. Loan repayments must name an active loan of the caller.
func (s *SavingsService) RequestWithdrawal(ctx context.Context, actor domain.Actor, req *domain.WithdrawalRequestInput) (*domain.WithdrawalRequest, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}

	switch req.Purpose {
	case domain.WithdrawalPurposeCash:
	case domain.WithdrawalPurposeLoanRepayment:
		if req.LoanID == nil {
			return nil, customError.NewValidation("loan_id is required for loan repayments", nil)
		}
		loan, err := s.repos.Loans.GetByID(ctx, *req.LoanID)
		if err != nil {
			return nil, storeError(err, "loan")
		}
		if loan.MemberID != actor.MemberID {
			return nil, customError.NewForbidden("loan belongs to another member", customError.ErrLoanNotOwned)
		}
		if loan.Status != domain.LoanStatusActive {
			return nil, customError.NewValidation("loan is not active", customError.ErrLoanNotActive)
		}
	default:
		return nil, customError.NewValidation("purpose must be cash or loan_repayment", nil)
	}

	w := &domain.WithdrawalRequest{
		ID:       uuid.New(),
		GroupID:  actor.GroupID,
		MemberID: actor.MemberID,
		Amount:   req.Amount,
		Purpose:  req.Purpose,
		Status:   domain.WithdrawalStatusPending,
	}
	if req.Purpose == domain.WithdrawalPurposeLoanRepayment {
		w.LoanID = req.LoanID
	}

	if err := s.repos.Savings.CreateWithdrawal(ctx, w); err != nil {
		return nil, storeError(err, "withdrawal")
	}
	return w, nil
}

// ApproveWithdrawal debits savings and, for loan repayments, applies an approved
// repayment to the loan. All writes share one transaction; any failure leaves the
// request pending.
func (s *SavingsService) ApproveWithdrawal(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var w *domain.WithdrawalRequest
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = s.lockPendingWithdrawal(ctx, r, actor, id)
		if err != nil {
			return err
		}

		// serializes balance checks across approvals in the group
		if _, err := r.Groups.LockByID(ctx, w.GroupID); err != nil {
			return storeError(err, "group")
		}

		balance, err := r.Savings.GetBalance(ctx, w.MemberID)
		if err != nil {
			return storeError(err, "savings")
		}
		if balance.LessThan(w.Amount) {
			return customError.NewValidation("savings balance "+money(balance)+" is below the requested amount", customError.ErrInsufficientSavings)
		}

		now := s.now()
		processor := actor.MemberID

		entry := &domain.SavingsEntry{
			ID:         uuid.New(),
			GroupID:    w.GroupID,
			MemberID:   w.MemberID,
			Amount:     w.Amount,
			EntryType:  domain.SavingsEntryWithdrawal,
			Reference:  "withdrawal:" + w.ID.String(),
			RecordedBy: processor,
		}
		if err := r.Savings.CreateEntry(ctx, entry); err != nil {
			return storeError(err, "savings entry")
		}

		if w.Purpose == domain.WithdrawalPurposeLoanRepayment {
			if err := s.applyLoanRepayment(ctx, r, w, processor, now); err != nil {
				return err
			}
		}

		w.Status = domain.WithdrawalStatusApproved
		w.ProcessedBy = &processor
		w.ProcessedAt = &now
		return storeError(r.Savings.UpdateWithdrawal(ctx, w), "withdrawal")
	})
	if err != nil {
		return nil, err
	}

	invalidateLeaderboard(ctx, s.cache, w.GroupID)
	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID:  w.MemberID,
		Template:  notify.TemplateWithdrawalProcessed,
		Variables: map[string]string{"amount": money(w.Amount), "status": w.Status},
	})
	return w, nil
}

func (s *SavingsService) applyLoanRepayment(ctx context.Context, r repository.Repos, w *domain.WithdrawalRequest, processor uuid.UUID, now time.Time) error {
	if w.LoanID == nil {
		return customError.NewValidation("withdrawal has no loan", nil)
	}

	loan, err := r.Loans.GetByIDForUpdate(ctx, *w.LoanID)
	if err != nil {
		return storeError(err, "loan")
	}
	if loan.MemberID != w.MemberID {
		return customError.NewForbidden("loan belongs to another member", customError.ErrLoanNotOwned)
	}
	if err := loan.ApplyRepayment(w.Amount); err != nil {
		return err
	}
	if err := r.Loans.Update(ctx, loan); err != nil {
		return storeError(err, "loan")
	}

	repayment := &domain.LoanRepayment{
		ID:           uuid.New(),
		LoanID:       loan.ID,
		GroupID:      loan.GroupID,
		MemberID:     loan.MemberID,
		Amount:       w.Amount,
		PaidDate:     now,
		Status:       domain.RepaymentStatusApproved,
		TimingRating: domain.TimingNotRated,
		ConfirmedAt:  &now,
		ConfirmedBy:  &processor,
	}
	return storeError(r.Repayments.Create(ctx, repayment), "repayment")
}

func (s *SavingsService) RejectWithdrawal(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var w *domain.WithdrawalRequest
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		w, err = s.lockPendingWithdrawal(ctx, r, actor, id)
		if err != nil {
			return err
		}

		now := s.now()
		processor := actor.MemberID
		w.Status = domain.WithdrawalStatusRejected
		w.ProcessedBy = &processor
		w.ProcessedAt = &now
		return storeError(r.Savings.UpdateWithdrawal(ctx, w), "withdrawal")
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID:  w.MemberID,
		Template:  notify.TemplateWithdrawalProcessed,
		Variables: map[string]string{"amount": money(w.Amount), "status": w.Status},
	})
	return w, nil
}

func (s *SavingsService) ListWithdrawals(ctx context.Context, actor domain.Actor, status string) ([]*domain.WithdrawalRequest, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	list, err := s.repos.Savings.ListWithdrawals(ctx, actor.GroupID, status)
	if err != nil {
		return nil, storeError(err, "withdrawals")
	}
	return list, nil
}

func (s *SavingsService) lockPendingWithdrawal(ctx context.Context, r repository.Repos, actor domain.Actor, id uuid.UUID) (*domain.WithdrawalRequest, error) {
	w, err := r.Savings.GetWithdrawalForUpdate(ctx, id)
	if err != nil {
		return nil, storeError(err, "withdrawal")
	}
	if err := actor.RequireGroup(w.GroupID); err != nil {
		return nil, err
	}
	if w.Status != domain.WithdrawalStatusPending {
		return nil, customError.NewConflict("withdrawal is already "+w.Status, nil)
	}
	return w, nil
}

func (s *SavingsService) requireMemberAccess(ctx context.Context, actor domain.Actor, memberID uuid.UUID) error {
	if actor.MemberID == memberID {
		return nil
	}
	member, err := s.repos.Members.GetByID(ctx, memberID)
	if err != nil {
		return storeError(err, "member")
	}
	return requireSelfOrAdmin(actor, memberID, member.GroupID)
}
