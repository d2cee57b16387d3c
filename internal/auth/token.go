package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jazanyumba/chama-vault/internal/domain"
)

// Claims carries the member identity inside a bearer token.
type Claims struct {
	MemberID uuid.UUID `json:"member_id"`
	GroupID  uuid.UUID `json:"group_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer issues and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the member.
func (t *TokenIssuer) Issue(member *domain.Member) (string, error) {
	now := t.now()
	claims := &Claims{
		MemberID: member.ID,
		GroupID:  member.GroupID,
		Role:     member.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   member.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Authenticate verifies a token and returns the actor it represents.
func (t *TokenIssuer) Authenticate(tokenStr string) (domain.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return domain.Actor{}, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Actor{}, jwt.ErrTokenInvalidClaims
	}
	if claims.MemberID == uuid.Nil {
		return domain.Actor{}, errors.New("token has no member id")
	}

	return domain.Actor{MemberID: claims.MemberID, GroupID: claims.GroupID, Role: claims.Role}, nil
}
