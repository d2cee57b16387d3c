package domain

import (
	"github.com/google/uuid"

	customError "github.com/jazanyumba/chama-vault/pkg/errors"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	MemberID uuid.UUID
	GroupID  uuid.UUID
	Role     string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// RequireAdmin fails with an authorization error unless the actor is an admin.
func (a Actor) RequireAdmin() error {
	if !a.IsAdmin() {
		return customError.NewForbidden("admin role required", customError.ErrAdminRequired)
	}
	return nil
}

// RequireGroup fails unless the resource belongs to the actor's group.
func (a Actor) RequireGroup(groupID uuid.UUID) error {
	if a.GroupID != groupID {
		return customError.NewForbidden("resource belongs to another group", nil)
	}
	return nil
}
