package service

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

type LoanService struct {
	repos    repository.Repos
	uow      repository.UnitOfWork
	notifier notify.Sender
	now      func() time.Time
}

func NewLoanService(repos repository.Repos, uow repository.UnitOfWork, notifier notify.Sender) *LoanService {
	return &LoanService{
		repos:    repos,
		uow:      uow,
		notifier: notifier,
		now:      time.Now,
	}
}

// RequestLoan opens a loan request without terms. The member's savings must
// reach the group's minimum loan-qualifying balance.
func (s *LoanService) RequestLoan(ctx context.Context, actor domain.Actor, req *domain.RequestLoanRequest) (*domain.Loan, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}

	group, err := s.repos.Groups.GetByID(ctx, actor.GroupID)
	if err != nil {
		return nil, storeError(err, "group")
	}

	balance, err := s.repos.Savings.GetBalance(ctx, actor.MemberID)
	if err != nil {
		return nil, storeError(err, "savings")
	}
	if balance.LessThan(group.MinLoanSavings) {
		return nil, customError.NewValidation("savings of "+money(group.MinLoanSavings)+" are required to request a loan", customError.ErrInsufficientSavings)
	}

	loan := &domain.Loan{
		ID:       uuid.New(),
		GroupID:  actor.GroupID,
		MemberID: actor.MemberID,
		Amount:   req.Amount,
		Status:   domain.LoanStatusRequested,
		Reason:   req.Reason,
	}
	if err := s.repos.Loans.Create(ctx, loan); err != nil {
		return nil, storeError(err, "loan")
	}
	return loan, nil
}

// CreateLoan records a loan with full terms on behalf of a member. Status defaults to active.
func (s *LoanService) CreateLoan(ctx context.Context, actor domain.Actor, req *domain.CreateLoanRequest) (*domain.Loan, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validateTerms(req.LoanTerms); err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = domain.LoanStatusActive
	}
	if !domain.IsValidLoanStatus(status) {
		return nil, customError.NewValidation("unknown loan status "+status, nil)
	}

	member, err := s.repos.Members.GetByID(ctx, req.MemberID)
	if err != nil {
		return nil, storeError(err, "member")
	}
	if err := actor.RequireGroup(member.GroupID); err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:       uuid.New(),
		GroupID:  member.GroupID,
		MemberID: member.ID,
		Status:   status,
		Reason:   req.Reason,
	}
	loan.ApplyTerms(req.LoanTerms)

	if err := s.repos.Loans.Create(ctx, loan); err != nil {
		return nil, storeError(err, "loan")
	}
	return loan, nil
}

// OfferLoan attaches terms to a requested or offered loan.
func (s *LoanService) OfferLoan(ctx context.Context, actor domain.Actor, loanID uuid.UUID, terms domain.LoanTerms) (*domain.Loan, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	var loan *domain.Loan
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		loan, err = r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return storeError(err, "loan")
		}
		if err := actor.RequireGroup(loan.GroupID); err != nil {
			return err
		}
		if err := loan.Offer(terms); err != nil {
			return err
		}
		return storeError(r.Loans.Update(ctx, loan), "loan")
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID: loan.MemberID,
		Template: notify.TemplateLoanOffered,
		Variables: map[string]string{
			"amount":       money(loan.Amount),
			"total_due":    money(loan.TotalDue),
			"installments": strconv.Itoa(loan.InstallmentNumber),
		},
	})
	return loan, nil
}

// RespondToOffer lets the borrower accept an offered loan or reject a pending one.
func (s *LoanService) RespondToOffer(ctx context.Context, actor domain.Actor, loanID uuid.UUID, req *domain.LoanDecisionRequest) (*domain.Loan, error) {
	var loan *domain.Loan
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		loan, err = r.Loans.GetByIDForUpdate(ctx, loanID)
		if err != nil {
			return storeError(err, "loan")
		}
		if loan.MemberID != actor.MemberID {
			return customError.NewForbidden("loan belongs to another member", customError.ErrLoanNotOwned)
		}

		switch req.Action {
		case "accept":
			if loan.Status != domain.LoanStatusOffered {
				return customError.NewConflict("only offered loans can be accepted", nil)
			}
			loan.Status = domain.LoanStatusActive
		case "reject":
			if loan.Status != domain.LoanStatusOffered && loan.Status != domain.LoanStatusRequested {
				return customError.NewConflict("loan can no longer be rejected", nil)
			}
			loan.Status = domain.LoanStatusRejected
		default:
			return customError.NewValidation("action must be accept or reject", nil)
		}

		return storeError(r.Loans.Update(ctx, loan), "loan")
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID:  loan.MemberID,
		Template:  notify.TemplateLoanDecision,
		Variables: map[string]string{"amount": money(loan.Amount), "status": loan.Status},
	})
	return loan, nil
}

// SubmitRepayment records a pending repayment. The balance is checked on approval.
func (s *LoanService) SubmitRepayment(ctx context.Context, actor domain.Actor, loanID uuid.UUID, req *domain.SubmitRepaymentRequest) (*domain.LoanRepayment, error) {
	if err := requirePositive(req.Amount, "amount"); err != nil {
		return nil, err
	}

	loan, err := s.repos.Loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, storeError(err, "loan")
	}
	if loan.MemberID != actor.MemberID {
		return nil, customError.NewForbidden("loan belongs to another member", customError.ErrLoanNotOwned)
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, customError.NewValidation("repayments can only be made on active loans", customError.ErrLoanNotActive)
	}

	paidDate := s.now()
	if req.PaidDate != nil {
		paidDate = *req.PaidDate
	}

	repayment := &domain.LoanRepayment{
		ID:           uuid.New(),
		LoanID:       loan.ID,
		GroupID:      loan.GroupID,
		MemberID:     loan.MemberID,
		Amount:       req.Amount,
		PaidDate:     paidDate,
		Status:       domain.RepaymentStatusPending,
		TimingRating: domain.TimingNotRated,
	}
	if err := s.repos.Repayments.Create(ctx, repayment); err != nil {
		return nil, storeError(err, "repayment")
	}
	return repayment, nil
}

// ApproveRepayment applies a pending repayment to the loan balance in one transaction.
func (s *LoanService) ApproveRepayment(ctx context.Context, actor domain.Actor, repaymentID uuid.UUID) (*domain.LoanRepayment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var repayment *domain.LoanRepayment
	var loan *domain.Loan
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		repayment, err = s.lockPendingRepayment(ctx, r, actor, repaymentID)
		if err != nil {
			return err
		}

		loan, err = r.Loans.GetByIDForUpdate(ctx, repayment.LoanID)
		if err != nil {
			return storeError(err, "loan")
		}
		if err := loan.ApplyRepayment(repayment.Amount); err != nil {
			return err
		}
		if err := r.Loans.Update(ctx, loan); err != nil {
			return storeError(err, "loan")
		}

		now := s.now()
		confirmer := actor.MemberID
		repayment.Status = domain.RepaymentStatusApproved
		repayment.ConfirmedAt = &now
		repayment.ConfirmedBy = &confirmer
		return storeError(r.Repayments.Update(ctx, repayment), "repayment")
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID:  repayment.MemberID,
		Template:  notify.TemplateRepaymentApproved,
		Variables: map[string]string{"amount": money(repayment.Amount), "total_due": money(loan.TotalDue)},
	})
	return repayment, nil
}

// RejectRepayment marks a pending repayment rejected without touching the loan.
func (s *LoanService) RejectRepayment(ctx context.Context, actor domain.Actor, repaymentID uuid.UUID) (*domain.LoanRepayment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	var repayment *domain.LoanRepayment
	err := s.uow.WithinTx(ctx, func(r repository.Repos) error {
		var err error
		repayment, err = s.lockPendingRepayment(ctx, r, actor, repaymentID)
		if err != nil {
			return err
		}

		now := s.now()
		confirmer := actor.MemberID
		repayment.Status = domain.RepaymentStatusRejected
		repayment.ConfirmedAt = &now
		repayment.ConfirmedBy = &confirmer
		return storeError(r.Repayments.Update(ctx, repayment), "repayment")
	})
	if err != nil {
		return nil, err
	}

	notifyQuietly(ctx, s.notifier, notify.Notification{
		MemberID:  repayment.MemberID,
		Template:  notify.TemplateRepaymentRejected,
		Variables: map[string]string{"amount": money(repayment.Amount)},
	})
	return repayment, nil
}

func (s *LoanService) lockPendingRepayment(ctx context.Context, r repository.Repos, actor domain.Actor, id uuid.UUID) (*domain.LoanRepayment, error) {
	repayment, err := r.Repayments.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, storeError(err, "repayment")
	}
	if err := actor.RequireGroup(repayment.GroupID); err != nil {
		return nil, err
	}
	if repayment.Status != domain.RepaymentStatusPending {
		return nil, customError.NewConflict("repayment is already "+repayment.Status, customError.ErrRepaymentNotPending)
	}
	return repayment, nil
}

// RateRepaymentTiming stores the admin's timing judgement on a repayment.
func (s *LoanService) RateRepaymentTiming(ctx context.Context, actor domain.Actor, repaymentID uuid.UUID, req *domain.RateTimingRequest) (*domain.LoanRepayment, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if !domain.IsValidTimingRating(req.TimingRating) {
		return nil, customError.NewValidation("timing rating must be early, on_time or late", customError.ErrInvalidTimingRating)
	}

	repayment, err := s.repos.Repayments.GetByID(ctx, repaymentID)
	if err != nil {
		return nil, storeError(err, "repayment")
	}
	if err := actor.RequireGroup(repayment.GroupID); err != nil {
		return nil, err
	}

	repayment.TimingRating = req.TimingRating
	if err := s.repos.Repayments.Update(ctx, repayment); err != nil {
		return nil, storeError(err, "repayment")
	}
	return repayment, nil
}

// ListLoans returns every loan in the group for admins and the caller's own loans otherwise.
func (s *LoanService) ListLoans(ctx context.Context, actor domain.Actor) ([]*domain.Loan, error) {
	var loans []*domain.Loan
	var err error
	if actor.IsAdmin() {
		loans, err = s.repos.Loans.ListByGroup(ctx, actor.GroupID)
	} else {
		loans, err = s.repos.Loans.ListByMember(ctx, actor.MemberID)
	}
	if err != nil {
		return nil, storeError(err, "loans")
	}
	return loans, nil
}

func (s *LoanService) GetLoan(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Loan, error) {
	loan, err := s.repos.Loans.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "loan")
	}
	if err := requireSelfOrAdmin(actor, loan.MemberID, loan.GroupID); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) ListRepayments(ctx context.Context, actor domain.Actor, loanID uuid.UUID) ([]*domain.LoanRepayment, error) {
	if _, err := s.GetLoan(ctx, actor, loanID); err != nil {
		return nil, err
	}
	repayments, err := s.repos.Repayments.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, storeError(err, "repayments")
	}
	return repayments, nil
}

func validateTerms(t domain.LoanTerms) error {
	if err := requirePositive(t.Amount, "amount"); err != nil {
		return err
	}
	if t.InterestRate.IsNegative() || t.Fees.IsNegative() {
		return customError.NewValidation("interest rate and fees must not be negative", nil)
	}
	if t.DueDate.IsZero() {
		return customError.NewValidation("due date is required", nil)
	}
	if t.InstallmentNumber <= 0 {
		return customError.NewValidation("installment number must be positive", nil)
	}
	return nil
}
