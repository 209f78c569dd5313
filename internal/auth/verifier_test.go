package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "super-secret-signing-key"

func signToken(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func validClaims() *Claims {
	return &Claims{
		Email: "user@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-123",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestVerify_ValidToken(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, validClaims())

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Errorf("expected user-123, got %s", claims.UserID())
	}
	if claims.Email != "user@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
}

func TestVerify_Rejections(t *testing.T) {
	v := NewVerifier(testSecret)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", validClaims())},
		{"expired", signToken(t, testSecret, expired)},
		{"wrong audience", signToken(t, testSecret, wrongAudience)},
		{"missing subject", signToken(t, testSecret, noSubject)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := v.Verify(tt.token); err == nil {
				t.Error("expected verification to fail")
			}
		})
	}
}

func TestFromRequest(t *testing.T) {
	v := NewVerifier(testSecret)
	token := signToken(t, testSecret, validClaims())

	r := httptest.NewRequest("GET", "/v1/translate/history", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	claims, gotToken, err := v.FromRequest(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Errorf("expected user-123, got %s", claims.UserID())
	}
	if gotToken != token {
		t.Error("expected the raw token to be returned")
	}
}

func TestFromRequest_MissingHeader(t *testing.T) {
	v := NewVerifier(testSecret)
	r := httptest.NewRequest("GET", "/", nil)

	if _, _, err := v.FromRequest(r); err != ErrMissingToken {
		t.Errorf("expected ErrMissingToken, got %v", err)
	}
}
