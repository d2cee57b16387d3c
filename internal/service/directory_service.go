package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/auth"
	"github.com/jazanyumba/chama-vault/internal/config"
	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/notify"
	"github.com/jazanyumba/chama-vault/internal/repository"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// DirectoryService owns groups, members and login.
type DirectoryService struct {
	repos     repository.Repos
	uow       repository.UnitOfWork
	tokens    TokenIssuer
	notifier  notify.Sender
	cache     LeaderboardCache
	trialDays int
	now       func() time.Time
}

func NewDirectoryService(
	repos repository.Repos,
	uow repository.UnitOfWork,
	tokens TokenIssuer,
	notifier notify.Sender,
	cache LeaderboardCache,
	cfg *config.Config,
) *DirectoryService {
	return &DirectoryService{
		repos:     repos,
		uow:       uow,
		tokens:    tokens,
		notifier:  notifier,
		cache:     cache,
		trialDays: cfg.Business.TrialDays,
		now:       time.Now,
	}
}

// RegisterGroup creates a group on a trial subscription together with its admin.
func (s *DirectoryService) RegisterGroup(ctx context.Context, req *domain.RegisterGroupRequest) (*domain.AuthResponse, error) {
	name := domain.NormalizeGroupName(req.GroupName)
	if name == "" {
		return nil, customError.NewValidation("group name is required", nil)
	}

	if err := s.ensureGroupNameFree(ctx, name); err != nil {
		return nil, err
	}
	if err := s.ensurePhoneFree(ctx, req.Phone); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, customError.NewBusinessError(customError.KindInternal, "HASH_ERROR", "could not hash password", err)
	}

	now := s.now()
	trialEnds := now.AddDate(0, 0, s.trialDays)
	group := &domain.Group{
		ID:                 uuid.New(),
		Name:               name,
		InterestRate:       req.InterestRate,
		MinLoanSavings:     req.MinLoanSavings,
		GroupType:          req.GroupType,
		SubscriptionStatus: domain.SubscriptionTrial,
		TrialEndsAt:        &trialEnds,
	}
	admin := &domain.Member{
		ID:           uuid.New(),
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		GroupID:      group.ID,
		Role:         domain.RoleAdmin,
	}
	group.AdminID = &admin.ID

	err = s.uow.WithinTx(ctx, func(r repository.Repos) error {
		if err := r.Groups.Create(ctx, group); err != nil {
			return storeError(err, "group")
		}
		if err := r.Members.Create(ctx, admin); err != nil {
			return storeError(err, "member")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(admin)
	if err != nil {
		return nil, customError.NewBusinessError(customError.KindInternal, "TOKEN_ERROR", "could not issue token", err)
	}

	return &domain.AuthResponse{Token: token, Member: admin, Group: group}, nil
}

// RegisterMember adds a pending member to an existing group.
func (s *DirectoryService) RegisterMember(ctx context.Context, req *domain.RegisterMemberRequest) (*domain.Member, error) {
	group, err := s.repos.Groups.GetByName(ctx, domain.NormalizeGroupName(req.GroupName))
	if err != nil {
		return nil, storeError(err, "group")
	}

	if err := s.ensurePhoneFree(ctx, req.Phone); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, customError.NewBusinessError(customError.KindInternal, "HASH_ERROR", "could not hash password", err)
	}

	member := &domain.Member{
		ID:           uuid.New(),
		Name:         req.Name,
		Phone:        req.Phone,
		PasswordHash: hash,
		GroupID:      group.ID,
		Role:         domain.RoleMember,
		Status:       domain.MemberStatusPending,
	}
	if err := s.repos.Members.Create(ctx, member); err != nil {
		return nil, storeError(err, "member")
	}

	return member, nil
}

// Login checks credentials and returns a token. Pending members are refused.
func (s *DirectoryService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.AuthResponse, error) {
	member, err := s.repos.Members.GetByPhone(ctx, req.Phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, customError.NewUnauthorized("invalid phone or password")
	}
	if err != nil {
		return nil, storeError(err, "member")
	}

	if !auth.CheckPassword(member.PasswordHash, req.Password) {
		return nil, customError.NewUnauthorized("invalid phone or password")
	}
	if !member.IsApproved() {
		return nil, customError.NewForbidden("membership is pending approval", nil)
	}

	group, err := s.repos.Groups.GetByID(ctx, member.GroupID)
	if err != nil {
		return nil, storeError(err, "group")
	}

	token, err := s.tokens.Issue(member)
	if err != nil {
		return nil, customError.NewBusinessError(customError.KindInternal, "TOKEN_ERROR", "could not issue token", err)
	}

	return &domain.AuthResponse{Token: token, Member: member, Group: group}, nil
}

// ApproveMember moves a pending member of the admin's group to approved.
func (s *DirectoryService) ApproveMember(ctx context.Context, actor domain.Actor, memberID uuid.UUID) (*domain.Member, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	member, err := s.repos.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, storeError(err, "member")
	}
	if err := actor.RequireGroup(member.GroupID); err != nil {
		return nil, err
	}
	if member.IsApproved() {
		return member, nil
	}

	member.Status = domain.MemberStatusApproved
	if err := s.repos.Members.Update(ctx, member); err != nil {
		return nil, storeError(err, "member")
	}

	invalidateLeaderboard(ctx, s.cache, member.GroupID)
	notifyQuietly(ctx, s.notifier, notify.Notification{MemberID: member.ID, Template: notify.TemplateMemberApproved})
	return member, nil
}

// RemoveMember deletes a member of the admin's group. Admins cannot remove themselves.
func (s *DirectoryService) RemoveMember(ctx context.Context, actor domain.Actor, memberID uuid.UUID) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if actor.MemberID == memberID {
		return customError.NewValidation("admins cannot remove themselves", nil)
	}

	member, err := s.repos.Members.GetByID(ctx, memberID)
	if err != nil {
		return storeError(err, "member")
	}
	if err := actor.RequireGroup(member.GroupID); err != nil {
		return err
	}

	if err := s.repos.Members.Delete(ctx, memberID); err != nil {
		return storeError(err, "member")
	}

	invalidateLeaderboard(ctx, s.cache, member.GroupID)
	return nil
}

// ListMembers returns the group's members. Non-admins only see approved members.
func (s *DirectoryService) ListMembers(ctx context.Context, actor domain.Actor, status string) ([]*domain.Member, error) {
	if !actor.IsAdmin() {
		if status != "" && status != domain.MemberStatusApproved {
			return nil, customError.NewForbidden("admin role required", customError.ErrAdminRequired)
		}
		status = domain.MemberStatusApproved
	}
	if status == domain.MemberStatusApproved {
		return s.ListApprovedMembers(ctx, actor.GroupID)
	}

	members, err := s.repos.Members.ListByGroup(ctx, actor.GroupID, status)
	if err != nil {
		return nil, storeError(err, "members")
	}
	return members, nil
}

// ListApprovedMembers returns the members eligible for rotations and the leaderboard.
func (s *DirectoryService) ListApprovedMembers(ctx context.Context, groupID uuid.UUID) ([]*domain.Member, error) {
	members, err := s.repos.Members.ListByGroup(ctx, groupID, domain.MemberStatusApproved)
	if err != nil {
		return nil, storeError(err, "members")
	}
	return members, nil
}

func (s *DirectoryService) GetMember(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Member, error) {
	member, err := s.repos.Members.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "member")
	}
	if err := actor.RequireGroup(member.GroupID); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *DirectoryService) GetGroup(ctx context.Context, actor domain.Actor) (*domain.Group, error) {
	group, err := s.repos.Groups.GetByID(ctx, actor.GroupID)
	if err != nil {
		return nil, storeError(err, "group")
	}
	return group, nil
}

func (s *DirectoryService) ensureGroupNameFree(ctx context.Context, name string) error {
	_, err := s.repos.Groups.GetByName(ctx, name)
	if err == nil {
		return customError.NewConflict("group name is already taken", customError.ErrDuplicate)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return storeError(err, "group")
	}
	return nil
}

func (s *DirectoryService) ensurePhoneFree(ctx context.Context, phone string) error {
	_, err := s.repos.Members.GetByPhone(ctx, phone)
	if err == nil {
		return customError.NewConflict("phone number is already registered", customError.ErrDuplicate)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return storeError(err, "member")
	}
	return nil
}
