package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clientdesk/internal/domain"
)

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)

	token, err := issuer.Issue("user-123", "u@example.com", []string{"admin", "client"}, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "u@example.com", claims.Email)
	assert.Equal(t, []string{"admin", "client"}, claims.Roles)
}

func TestJWTVerifier_Verify(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("user-123", "u@example.com", []string{"client"}, time.Hour)
	require.NoError(t, err)

	userID, roles, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.Equal(t, []string{"client"}, roles)
}

func TestJWTVerifier_Verify_WrongSecret(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("other-secret")

	token, err := issuer.Issue("user-123", "u@example.com", nil, time.Hour)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestJWTVerifier_Verify_Expired(t *testing.T) {
	issuer := NewJWTIssuer("test-secret")
	verifier := NewJWTVerifier("test-secret")

	token, err := issuer.Issue("user-123", "u@example.com", nil, -time.Minute)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestInviteTokenCodec_RoundTrip(t *testing.T) {
	issuer := NewInviteTokenIssuer("invite-secret")
	verifier := NewInviteTokenVerifier("invite-secret")

	identity := domain.InviteeIdentity{Email: "a@b.com", FirstName: "A", LastName: "B"}
	token, err := issuer.Issue(identity, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, identity, got)
}

func TestInviteTokenCodec_Verify_Expired(t *testing.T) {
	issuer := NewInviteTokenIssuer("invite-secret")
	verifier := NewInviteTokenVerifier("invite-secret")

	token, err := issuer.Issue(domain.InviteeIdentity{Email: "a@b.com"}, -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, domain.ErrInvitationExpired)
}

func TestInviteTokenCodec_Verify_Garbage(t *testing.T) {
	verifier := NewInviteTokenVerifier("invite-secret")
	_, err := verifier.Verify("not-a-token")
	require.ErrorIs(t, err, domain.ErrInvitationExpired)
}
