package httpapi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"daily-tracker/internal/repository"
	"daily-tracker/internal/service"
)

// Authenticator turns a bearer token into the id of the user it names.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uint, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (uint, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (uint, error) {
	return f(ctx, token)
}

// Claims carried by tokens from the identity provider. Subject is the
// provider's opaque user id.
type Claims struct {
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// JWTAuthenticator verifies HS256 tokens and maps their subject to a local
// user, creating one on first sight.
type JWTAuthenticator struct {
	secret []byte
	users  *repository.UserRepository
}

func NewJWTAuthenticator(secret string, users *repository.UserRepository) *JWTAuthenticator {
	return &JWTAuthenticator{secret: []byte(secret), users: users}
}

func (a *JWTAuthenticator) Authenticate(ctx context.Context, token string) (uint, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", service.ErrUnauthenticated, err)
	}
	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return 0, fmt.Errorf("%w: token has no subject", service.ErrUnauthenticated)
	}

	user, err := a.users.UpsertExternal(ctx, subject, claims.Picture)
	if err != nil {
		return 0, fmt.Errorf("resolve user: %w", err)
	}
	return user.ID, nil
}

// IssueToken signs a token for subject. It stands in for the identity
// provider during development.
func IssueToken(secret, subject, picture string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := time.Now()
	claims := Claims{
		Picture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func bearerToken(header string) (string, bool) {
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("bearer "):])
	return token, token != ""
}
