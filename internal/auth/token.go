// Package auth owns actor identity: who is calling, with which role.
// Every protected operation receives an explicit Actor; nothing reads
// ambient session state.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleLeader  Role = "leader"
	RoleCourier Role = "courier"
	RoleBuyer   Role = "buyer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLeader, RoleCourier, RoleBuyer:
		return true
	}
	return false
}

// Actor identifies the caller of a mutation or query.
type Actor struct {
	ID   string
	Role Role
}

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token carrying the actor's id and role.
func IssueToken(actor Actor, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: string(actor.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the actor it encodes.
func ParseToken(tokenString, secret string) (Actor, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Actor{}, ErrInvalidToken
	}
	actor := Actor{ID: claims.Subject, Role: Role(claims.Role)}
	if actor.ID == "" || !actor.Role.Valid() {
		return Actor{}, ErrInvalidToken
	}
	return actor, nil
}
