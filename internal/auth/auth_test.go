package auth

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/mocks"
	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	member := &domain.Member{ID: uuid.New(), GroupID: uuid.New(), Role: domain.RoleAdmin}

	token, err := issuer.Issue(member)
	require.NoError(t, err)

	actor, err := issuer.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, member.ID, actor.MemberID)
	assert.Equal(t, member.GroupID, actor.GroupID)
	assert.True(t, actor.IsAdmin())
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	member := &domain.Member{ID: uuid.New(), GroupID: uuid.New(), Role: domain.RoleMember}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenIssuer("other", time.Hour)
		token, err := other.Issue(member)
		require.NoError(t, err)

		_, err = issuer.Authenticate(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewTokenIssuer("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := past.Issue(member)
		require.NoError(t, err)

		_, err = issuer.Authenticate(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Authenticate("not-a-token")
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestSessionAuthenticator(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	member := &domain.Member{ID: uuid.New(), GroupID: uuid.New(), Role: domain.RoleMember, Status: domain.MemberStatusApproved}
	token, err := issuer.Issue(member)
	require.NoError(t, err)

	t.Run("stored member wins over claims", func(t *testing.T) {
		movedGroup := uuid.New()
		members := &mocks.MockMemberRepository{}
		members.On("GetByID", mock.Anything, member.ID).Return(&domain.Member{ID: member.ID, GroupID: movedGroup, Role: domain.RoleAdmin, Status: domain.MemberStatusApproved}, nil)

		actor, err := NewSessionAuthenticator(issuer, members).Authenticate(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, movedGroup, actor.GroupID)
		assert.True(t, actor.IsAdmin())
	})

	t.Run("deleted member", func(t *testing.T) {
		members := &mocks.MockMemberRepository{}
		members.On("GetByID", mock.Anything, member.ID).Return(nil, sql.ErrNoRows)

		_, err := NewSessionAuthenticator(issuer, members).Authenticate(context.Background(), token)

		require.Error(t, err)
		assert.True(t, customError.IsKind(err, customError.KindAuthorization))
	})

	t.Run("bad token never reaches the store", func(t *testing.T) {
		members := &mocks.MockMemberRepository{}

		_, err := NewSessionAuthenticator(issuer, members).Authenticate(context.Background(), "not-a-token")

		assert.True(t, customError.IsKind(err, customError.KindAuthorization))
		members.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}
