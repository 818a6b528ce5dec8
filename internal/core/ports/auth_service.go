package ports

import (
	"context"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

type AuthService interface {
	// Authenticate verifies credentials and returns the caller's claim.
	// Unknown email, inactive account, and wrong password all fail with
	// the same domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.Claim, error)
	// IssueToken signs a claim into a bearer token and reports its expiry.
	IssueToken(claim domain.Claim) (token string, expiresAt int64, err error)
}
