package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

const (
	MemberStatusPending  = "pending"
	MemberStatusApproved = "approved"
)

// Member is a registered chama participant.
type Member struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Phone        string    `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	GroupID      uuid.UUID `json:"group_id" db:"group_id"`
	Role         string    `json:"role" db:"role"`
	Status       string    `json:"status" db:"status"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Normalize keeps admins approved and flagged.
// Repositories call it before every write.
func (m *Member) Normalize() {
	if m.Role == "" {
		m.Role = RoleMember
	}
	if m.Role == RoleAdmin {
		m.Status = MemberStatusApproved
		m.IsAdmin = true
	}
	if m.Status == "" {
		m.Status = MemberStatusPending
	}
}

func (m *Member) IsApproved() bool {
	return m.Status == MemberStatusApproved
}

type RegisterMemberRequest struct {
	GroupName string `json:"group_name" validate:"required"`
	Name      string `json:"name" validate:"required,min=2,max=100"`
	Phone     string `json:"phone" validate:"required,min=9,max=15"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token  string  `json:"token"`
	Member *Member `json:"member"`
	Group  *Group  `json:"group,omitempty"`
}
