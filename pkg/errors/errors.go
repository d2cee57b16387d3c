package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a business error so callers can translate it without string matching.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindAuthorization Kind = "authorization"
	KindInternal      Kind = "internal"
)

// Domain errors
var (
	ErrCycleAlreadyActive   = errors.New("group already has an active cycle")
	ErrNoApprovedMembers    = errors.New("group has no approved members")
	ErrCycleNotActive       = errors.New("cycle is not active")
	ErrRecipientMismatch    = errors.New("member is not the current recipient")
	ErrContributionNotFound = errors.New("no outstanding contribution")
	ErrInvalidTimingRating  = errors.New("invalid timing rating")
	ErrLoanClosedForOffer   = errors.New("loan cannot receive an offer in its current status")
	ErrLoanNotOwned         = errors.New("loan does not belong to member")
	ErrLoanNotActive        = errors.New("loan is not active")
	ErrRepaymentExceedsDue  = errors.New("repayment exceeds outstanding balance")
	ErrRepaymentNotPending  = errors.New("repayment is not pending")
	ErrInsufficientSavings  = errors.New("insufficient savings")
	ErrAdminRequired        = errors.New("admin role required")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrDuplicate            = errors.New("record already exists")
	ErrNotFound             = errors.New("record not found")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(kind Kind, code, message string, err error) *BusinessError {
	return &BusinessError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConflict      = "CONFLICT"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeForbidden     = "FORBIDDEN"
	ErrCodeUnauthorized  = "UNAUTHORIZED"
	ErrCodeDatabaseError = "DATABASE_ERROR"
	ErrCodeCacheError    = "CACHE_ERROR"
)

func NewValidation(message string, err error) *BusinessError {
	return NewBusinessError(KindValidation, ErrCodeValidation, message, err)
}

func NewConflict(message string, err error) *BusinessError {
	return NewBusinessError(KindConflict, ErrCodeConflict, message, err)
}

func NewNotFound(message string, err error) *BusinessError {
	if err == nil {
		err = ErrNotFound
	}
	return NewBusinessError(KindNotFound, ErrCodeNotFound, message, err)
}

func NewForbidden(message string, err error) *BusinessError {
	return NewBusinessError(KindAuthorization, ErrCodeForbidden, message, err)
}

func NewUnauthorized(message string) *BusinessError {
	return NewBusinessError(KindAuthorization, ErrCodeUnauthorized, message, ErrInvalidCredentials)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		KindInternal,
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}

// KindOf returns the kind of the first BusinessError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
