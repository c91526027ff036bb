// auth_test.go

// unit tests for JWTVerifier.
package api

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signHS256 returns a signed token for the given subject and expiry.
func signHS256(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func TestJWTVerifier(t *testing.T) {
	ctx := context.Background()
	const secret = "test-secret"

	t.Run("valid token yields its subject", func(t *testing.T) {
		v := NewJWTVerifier(secret)
		token := signHS256(t, secret, "uid-1", time.Now().Add(time.Hour))

		sub, err := v.Verify(ctx, token)
		if err != nil {
			t.Fatalf("Verify failed: %v", err)
		}
		if sub != "uid-1" {
			t.Errorf("subject: expected uid-1, got %q", sub)
		}
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		v := NewJWTVerifier(secret)
		token := signHS256(t, "other-secret", "uid-1", time.Now().Add(time.Hour))

		if _, err := v.Verify(ctx, token); err == nil {
			t.Error("expected error for token signed with a different secret")
		}
	})

	t.Run("expired token fails", func(t *testing.T) {
		v := NewJWTVerifier(secret)
		token := signHS256(t, secret, "uid-1", time.Now().Add(-time.Minute))

		if _, err := v.Verify(ctx, token); err == nil {
			t.Error("expected error for expired token")
		}
	})

	t.Run("garbage token fails", func(t *testing.T) {
		v := NewJWTVerifier(secret)

		if _, err := v.Verify(ctx, "not.a.jwt"); err == nil {
			t.Error("expected error for malformed token")
		}
	})

	t.Run("token without subject fails", func(t *testing.T) {
		v := NewJWTVerifier(secret)
		token := signHS256(t, secret, "", time.Now().Add(time.Hour))

		if _, err := v.Verify(ctx, token); err == nil {
			t.Error("expected error for token with empty subject")
		}
	})

	t.Run("unsigned token fails", func(t *testing.T) {
		v := NewJWTVerifier(secret)
		claims := jwt.RegisteredClaims{
			Subject:   "uid-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("building none-alg token: %v", err)
		}

		if _, err := v.Verify(ctx, token); err == nil {
			t.Error("expected error for alg=none token")
		}
	})
}
