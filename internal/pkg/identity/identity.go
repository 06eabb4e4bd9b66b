// Package identity is the boundary to the external identity provider.
// The rest of the system treats the verified principal id as opaque and
// never re-derives it from credential internals.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredential is returned for any credential that does not
// verify. Callers map it to a 401 without further detail.
var ErrInvalidCredential = errors.New("identity: invalid credential")

// Principal is the verified identity of the requesting merchant.
type Principal struct {
	ID    string
	Email string
}

// Verifier validates a raw bearer credential and returns the principal.
type Verifier interface {
	Verify(ctx context.Context, rawCredential string) (Principal, error)
}

// HS256Verifier validates JWTs signed with a shared HS256 secret.
type HS256Verifier struct {
	secret []byte
}

// NewHS256Verifier creates a verifier for HS256 tokens.
func NewHS256Verifier(secret string) (*HS256Verifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("identity: JWT secret is required")
	}
	return &HS256Verifier{secret: []byte(secret)}, nil
}

// Verify parses and validates the token and extracts the principal from
// the subject claim.
func (v *HS256Verifier) Verify(_ context.Context, rawCredential string) (Principal, error) {
	tok, err := jwt.Parse(rawCredential, func(token *jwt.Token) (interface{}, error) {
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, ErrInvalidCredential
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, ErrInvalidCredential
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, ErrInvalidCredential
	}

	principal := Principal{ID: sub}
	if email, ok := claims["email"].(string); ok {
		principal.Email = email
	}
	return principal, nil
}
