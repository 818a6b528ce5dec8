package ports

import "github.com/accesskeeper/identity-system/internal/core/domain"

// TokenIssuer signs identity claims into opaque bearer tokens and decodes
// them back. The core treats it as an opaque signer/verifier pair.
type TokenIssuer interface {
	// Sign returns the serialized token and its expiry as Unix seconds.
	Sign(claim domain.Claim) (token string, expiresAt int64, err error)
	// Decode verifies the signature and expiry and returns the embedded
	// claim. Any failure yields domain.ErrInvalidCredentials.
	Decode(token string) (*domain.Claim, error)
}
