package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"daily-tracker/internal/httpapi"
)

func TestTokenCmd(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	out, err := run(t, "token", "--subject", "alice", "--picture", "https://img/alice.png", "--ttl", "1h")
	if err != nil {
		t.Fatalf("token error = %v\n%s", err, out)
	}

	var claims httpapi.Claims
	_, err = jwt.ParseWithClaims(strings.TrimSpace(out), &claims, func(*jwt.Token) (any, error) {
		return []byte("s3cret"), nil
	})
	if err != nil {
		t.Fatalf("ParseWithClaims() error = %v", err)
	}
	if claims.Subject != "alice" || claims.Picture != "https://img/alice.png" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Errorf("ExpiresAt = %v", claims.ExpiresAt)
	}
}

func TestTokenCmdErrors(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	if _, err := run(t, "token"); err == nil {
		t.Error("token without --subject succeeded")
	}

	t.Setenv("JWT_SECRET", "")
	if _, err := run(t, "token", "--subject", "alice"); err == nil {
		t.Error("token without JWT_SECRET succeeded")
	}
}
