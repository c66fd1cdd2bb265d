package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	actor := Actor{ID: "c0ffee", Role: RoleCourier}
	tok, err := IssueToken(actor, "secret", time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(tok, "secret")
	require.NoError(t, err)
	require.Equal(t, actor, got)
}

func TestTokenWrongSecret(t *testing.T) {
	tok, err := IssueToken(Actor{ID: "x", Role: RoleAdmin}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "other")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tok, err := IssueToken(Actor{ID: "x", Role: RoleBuyer}, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(tok, "secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	tok, err := IssueToken(Actor{ID: "x", Role: Role("superuser")}, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, "secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("kurir123")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "kurir123"))
	require.False(t, CheckPassword(hash, "kurir124"))
}
