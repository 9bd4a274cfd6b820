package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"clientdesk/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type jwtIssuer struct {
	secret []byte
}

// NewJWTIssuer returns a TokenIssuer that signs session JWTs with HS256 using
// the given secret. The expiry passed to Issue is used for each token.
func NewJWTIssuer(secret string) domain.TokenIssuer {
	return &jwtIssuer{secret: []byte(secret)}
}

func (i *jwtIssuer) Issue(userID, email string, roles []string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Email: email,
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

type jwtVerifier struct {
	secret []byte
}

// NewJWTVerifier returns a TokenVerifier for session JWTs signed by NewJWTIssuer.
func NewJWTVerifier(secret string) domain.TokenVerifier {
	return &jwtVerifier{secret: []byte(secret)}
}

func (v *jwtVerifier) Verify(token string) (string, []string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*jwtClaims)
	if !ok || !parsed.Valid {
		return "", nil, fmt.Errorf("invalid token")
	}
	return claims.Subject, claims.Roles, nil
}

type inviteClaims struct {
	jwt.RegisteredClaims
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type inviteTokenCodec struct {
	secret []byte
}

// NewInviteTokenIssuer returns an InviteTokenIssuer that signs invitation
// JWTs with HS256. The invitee email is the token subject.
func NewInviteTokenIssuer(secret string) domain.InviteTokenIssuer {
	return &inviteTokenCodec{secret: []byte(secret)}
}

// NewInviteTokenVerifier returns an InviteTokenVerifier for tokens signed by
// NewInviteTokenIssuer.
func NewInviteTokenVerifier(secret string) domain.InviteTokenVerifier {
	return &inviteTokenCodec{secret: []byte(secret)}
}

func (c *inviteTokenCodec) Issue(identity domain.InviteeIdentity, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := inviteClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign invite token: %w", err)
	}
	return tokenString, nil
}

func (c *inviteTokenCodec) Verify(token string) (domain.InviteeIdentity, error) {
	parsed, err := jwt.ParseWithClaims(token, &inviteClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return domain.InviteeIdentity{}, domain.ErrInvitationExpired
	}
	claims, ok := parsed.Claims.(*inviteClaims)
	if !ok || !parsed.Valid {
		return domain.InviteeIdentity{}, domain.ErrInvitationExpired
	}
	return domain.InviteeIdentity{
		Email:     claims.Subject,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}, nil
}
