package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	GroupTypeSavingsAndLoans = "savings_and_loans"
	GroupTypeTableBanking    = "table_banking"
)

const (
	SubscriptionTrial    = "trial"
	SubscriptionActive   = "active"
	SubscriptionExpired  = "expired"
	SubscriptionCanceled = "canceled"
)

// Group is a chama: the unit every member, cycle and loan belongs to.
type Group struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	AdminID            *uuid.UUID      `json:"admin_id,omitempty" db:"admin_id"`
	InterestRate       decimal.Decimal `json:"interest_rate" db:"interest_rate"`
	MinLoanSavings     decimal.Decimal `json:"min_loan_savings" db:"min_loan_savings"`
	GroupType          string          `json:"group_type" db:"group_type"`
	SubscriptionStatus string          `json:"subscription_status" db:"subscription_status"`
	TrialEndsAt        *time.Time      `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// CanNotify reports whether the group's subscription allows outbound notifications at now.
func (g *Group) CanNotify(now time.Time) bool {
	switch g.SubscriptionStatus {
	case SubscriptionActive:
		return true
	case SubscriptionTrial:
		return g.TrialEndsAt == nil || now.Before(*g.TrialEndsAt)
	}
	return false
}

// NormalizeGroupName trims, collapses inner whitespace and lowercases a group name.
func NormalizeGroupName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

type RegisterGroupRequest struct {
	GroupName      string          `json:"group_name" validate:"required,min=3,max=100"`
	GroupType      string          `json:"group_type" validate:"required,oneof=savings_and_loans table_banking"`
	InterestRate   decimal.Decimal `json:"interest_rate" validate:"decimal_gte=0,cents"`
	MinLoanSavings decimal.Decimal `json:"min_loan_savings" validate:"decimal_gte=0,cents"`
	Name           string          `json:"name" validate:"required,min=2,max=100"`
	Phone          string          `json:"phone" validate:"required,min=9,max=15"`
	Password       string          `json:"password" validate:"required,min=6"`
}
