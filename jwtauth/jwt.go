package jwtauth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// SessionClaims is the decoded payload of a verified session token. It is
// validated but never persisted.
type SessionClaims struct {
	ApplicationID string `json:"sub"`
	IssuedAt      int64  `json:"iat"`
	Name          string `json:"name"`
	IsAdmin       bool   `json:"is_admin"`
}

// Verifier verifies session tokens against the secret and algorithm supplied
// at startup.
type Verifier struct {
	secret    []byte
	algorithm string
}

// NewVerifier returns a verifier for tokens signed with the given HMAC
// algorithm and secret.
func NewVerifier(secret, algorithm string) (*Verifier, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, errors.Errorf("unknown JWT algorithm: %s", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("unsupported JWT algorithm: %s", algorithm)
	}
	return &Verifier{secret: []byte(secret), algorithm: algorithm}, nil
}

// VerifyToken verifies the token signature and extracts the session claims.
func (v *Verifier) VerifyToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != v.algorithm {
			return nil, errors.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "invalid session token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("session token carries no claims")
	}

	claims := &SessionClaims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.ApplicationID = sub
	}
	if claims.ApplicationID == "" {
		return nil, errors.New("session token carries no application ID")
	}
	if iat, ok := mapClaims["iat"].(float64); ok {
		claims.IssuedAt = int64(iat)
	}
	if name, ok := mapClaims["name"].(string); ok {
		claims.Name = name
	}
	if isAdmin, ok := mapClaims["is_admin"].(bool); ok {
		claims.IsAdmin = isAdmin
	}
	return claims, nil
}
