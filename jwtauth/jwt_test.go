package jwtauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string,
	claims jwt.MapClaims) string {

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("couldn't sign a test token: %v", err)
	}
	return token
}

// TestVerifyToken tests that a valid token yields its session claims.
func TestVerifyToken(t *testing.T) {
	verifier, err := NewVerifier(testSecret, "HS256")
	if err != nil {
		t.Fatalf("NewVerifier: unexpected error %v", err)
	}

	issuedAt := time.Now().Unix()
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
		"sub":      "b02bd6a3-3eb1-4b2a-92b8-2b53a8b7e287",
		"iat":      issuedAt,
		"name":     "billing",
		"is_admin": true,
	})

	claims, err := verifier.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: unexpected error %v", err)
	}
	if claims.ApplicationID != "b02bd6a3-3eb1-4b2a-92b8-2b53a8b7e287" {
		t.Errorf("wrong application ID: %q", claims.ApplicationID)
	}
	if claims.IssuedAt != issuedAt {
		t.Errorf("wrong issue time - got %d, want %d", claims.IssuedAt, issuedAt)
	}
	if claims.Name != "billing" {
		t.Errorf("wrong name: %q", claims.Name)
	}
	if !claims.IsAdmin {
		t.Errorf("admin flag was dropped")
	}
}

// TestVerifyTokenFailures tests signature, algorithm, and claim failures.
func TestVerifyTokenFailures(t *testing.T) {
	verifier, err := NewVerifier(testSecret, "HS256")
	if err != nil {
		t.Fatalf("NewVerifier: unexpected error %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{
			name: "wrong secret",
			token: signToken(t, jwt.SigningMethodHS256, "other-secret",
				jwt.MapClaims{"sub": "a1"}),
		},
		{
			name: "wrong algorithm",
			token: signToken(t, jwt.SigningMethodHS384, testSecret,
				jwt.MapClaims{"sub": "a1"}),
		},
		{
			name: "missing subject",
			token: signToken(t, jwt.SigningMethodHS256, testSecret,
				jwt.MapClaims{"name": "no-subject"}),
		},
		{name: "garbage", token: "not.a.token"},
	}

	for _, test := range tests {
		_, err := verifier.VerifyToken(test.token)
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}

// TestNewVerifierRejectsNonHMAC tests that only HMAC algorithms are accepted.
func TestNewVerifierRejectsNonHMAC(t *testing.T) {
	_, err := NewVerifier(testSecret, "RS256")
	if err == nil {
		t.Errorf("NewVerifier(RS256): expected an error")
	}
	_, err = NewVerifier(testSecret, "NOPE")
	if err == nil {
		t.Errorf("NewVerifier(NOPE): expected an error")
	}
}
