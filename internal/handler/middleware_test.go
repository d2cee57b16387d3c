package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jazanyumba/chama-vault/internal/auth"
	"github.com/jazanyumba/chama-vault/internal/domain"
	"github.com/jazanyumba/chama-vault/internal/mocks"
)

func TestRequireAuth(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	groupID := uuid.New()

	approvedAdmin := &domain.Member{ID: uuid.New(), GroupID: groupID, Role: domain.RoleAdmin, Status: domain.MemberStatusApproved}
	removed := &domain.Member{ID: uuid.New(), GroupID: groupID, Role: domain.RoleMember, Status: domain.MemberStatusApproved}
	pending := &domain.Member{ID: uuid.New(), GroupID: groupID, Role: domain.RoleMember, Status: domain.MemberStatusPending}
	// token still claims admin, but the stored member was demoted
	demoted := &domain.Member{ID: uuid.New(), GroupID: groupID, Role: domain.RoleAdmin, Status: domain.MemberStatusApproved}
	broken := &domain.Member{ID: uuid.New(), GroupID: groupID, Role: domain.RoleMember, Status: domain.MemberStatusApproved}

	tokenFor := func(m *domain.Member) string {
		token, err := issuer.Issue(m)
		require.NoError(t, err)
		return token
	}

	members := &mocks.MockMemberRepository{}
	members.On("GetByID", mock.Anything, approvedAdmin.ID).Return(approvedAdmin, nil)
	members.On("GetByID", mock.Anything, removed.ID).Return(nil, sql.ErrNoRows)
	members.On("GetByID", mock.Anything, pending.ID).Return(pending, nil)
	members.On("GetByID", mock.Anything, demoted.ID).Return(&domain.Member{ID: demoted.ID, GroupID: groupID, Role: domain.RoleMember, Status: domain.MemberStatusApproved}, nil)
	members.On("GetByID", mock.Anything, broken.ID).Return(nil, errors.New("connection refused"))

	var seen domain.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ActorFrom(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := RequireAuth(auth.NewSessionAuthenticator(issuer, members))(next)

	tests := []struct {
		name      string
		header    string
		want      int
		wantAdmin bool
	}{
		{name: "valid token", header: "Bearer " + tokenFor(approvedAdmin), want: http.StatusNoContent, wantAdmin: true},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + tokenFor(approvedAdmin), want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", want: http.StatusUnauthorized},
		{name: "removed member", header: "Bearer " + tokenFor(removed), want: http.StatusUnauthorized},
		{name: "pending member", header: "Bearer " + tokenFor(pending), want: http.StatusUnauthorized},
		{name: "role comes from the store", header: "Bearer " + tokenFor(demoted), want: http.StatusNoContent, wantAdmin: false},
		{name: "store failure", header: "Bearer " + tokenFor(broken), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = domain.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/api/v1/loans", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				assert.Equal(t, groupID, seen.GroupID)
				assert.Equal(t, tt.wantAdmin, seen.IsAdmin())
			} else {
				assert.Equal(t, uuid.Nil, seen.MemberID)
			}
		})
	}
}
