// Package token signs and verifies bearer tokens carrying identity claims.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

// JWTIssuer signs claims as HS256 JWTs. The secret is process-wide and
// read-only after construction.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTIssuer fails when the secret is empty; callers treat that as a fatal
// startup precondition, not a runtime error.
func NewJWTIssuer(secret string, ttl time.Duration) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret is not set")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Sign serializes the claim into a bearer token and returns its expiry as
// Unix seconds.
func (i *JWTIssuer) Sign(claim domain.Claim) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(i.ttl).Unix()

	claims := jwt.MapClaims{
		"sub":   claim.SubjectID,
		"email": claim.Email,
		"role":  string(claim.Role),
		"iat":   now.Unix(),
		"exp":   expiresAt,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Decode verifies signature, signing method, and expiry, and returns the
// embedded claim. Every failure mode collapses into ErrInvalidCredentials so
// the transport layer cannot leak why a token was rejected.
func (i *JWTIssuer) Decode(token string) (*domain.Claim, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidCredentials
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !domain.Role(role).Valid() {
		return nil, domain.ErrInvalidCredentials
	}

	return &domain.Claim{SubjectID: sub, Email: email, Role: domain.Role(role)}, nil
}
