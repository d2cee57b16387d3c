package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/domain"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// MemberLookup loads the stored member behind a token.
type MemberLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
}

// SessionAuthenticator verifies bearer tokens against the member store.
// Role and group always come from the stored member, not from the token.
type SessionAuthenticator struct {
	tokens  *TokenIssuer
	members MemberLookup
}

func NewSessionAuthenticator(tokens *TokenIssuer, members MemberLookup) *SessionAuthenticator {
	return &SessionAuthenticator{tokens: tokens, members: members}
}

// Authenticate returns the actor for a valid token whose member still exists and is approved.
func (s *SessionAuthenticator) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	claimed, err := s.tokens.Authenticate(token)
	if err != nil {
		return domain.Actor{}, customError.NewUnauthorized("invalid or expired token")
	}

	member, err := s.members.GetByID(ctx, claimed.MemberID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Actor{}, customError.NewUnauthorized("member no longer exists")
	}
	if err != nil {
		return domain.Actor{}, customError.WrapDatabaseError(err)
	}
	if member.Status != domain.MemberStatusApproved {
		return domain.Actor{}, customError.NewUnauthorized("member is not approved")
	}

	return domain.Actor{MemberID: member.ID, GroupID: member.GroupID, Role: member.Role}, nil
}
