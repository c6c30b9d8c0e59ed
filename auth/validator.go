// Package auth validates the HMAC-signed bearer tokens guarding the admin
// API (configuration reload and inspection).
package auth

import (
	"context"
	"fmt"

	"github.com/dockwall/dockwall/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// Validator validates HS256-signed admin tokens.
type Validator struct {
	secret []byte
}

// NewValidator creates a token validator with the given HMAC secret
func NewValidator(secret string) *Validator {
	return &Validator{secret: []byte(secret)}
}

// tokenClaims is the JWT claim set carried by admin tokens
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ValidateToken parses and verifies a token, returning its claims.
// Expiry and not-before are enforced by the parser.
func (v *Validator) ValidateToken(ctx context.Context, token string) (*middleware.Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing failed: %w", err)
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	out := &middleware.Claims{
		Sub:  claims.Subject,
		Role: claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.Exp = claims.ExpiresAt.Unix()
	}
	if claims.IssuedAt != nil {
		out.Iat = claims.IssuedAt.Unix()
	}
	return out, nil
}
