package ports

import (
	"context"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

// RoleAuthorityRepository persists promotion tokens and the role-change
// audit trail. Implementations must honour the atomicity contracts below;
// all cross-request safety of the role-authority service depends on them.
type RoleAuthorityRepository interface {
	CreatePromotionToken(ctx context.Context, token *domain.PromotionToken) error

	// FindPromotionTokenByValue returns domain.ErrForbidden when no token
	// matches: redemption must not distinguish an unknown token from a
	// spent one.
	FindPromotionTokenByValue(ctx context.Context, token string) (*domain.PromotionToken, error)

	// ClaimPromotionToken flips used from false to true and stamps usedAt
	// in a single atomic conditional update. It returns domain.ErrForbidden
	// when the token is missing or already claimed. This is the
	// serialization point for concurrent redemptions of one token.
	ClaimPromotionToken(ctx context.Context, token string) error

	// UpdateRoleWithAudit sets the target's role to next and appends the
	// matching RoleChangeRecord in one transaction. The update is
	// conditional on the target still holding previous; a reader must
	// never observe the role changed without the audit record, nor the
	// reverse.
	UpdateRoleWithAudit(ctx context.Context, targetID string, previous, next domain.Role, changedBy string) error

	// ListRoleChanges returns audit entries for one user, newest first.
	// An empty userID lists across all users.
	ListRoleChanges(ctx context.Context, userID string, limit int64) ([]domain.RoleChangeRecord, error)
}
