package ports

import (
	"context"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

type RoleService interface {
	ChangeUserRole(ctx context.Context, actorID, targetID string, nextRole domain.Role) error
	IssuePromotionToken(ctx context.Context, actorID string, nextRole domain.Role) (string, error)
	RedeemPromotionToken(ctx context.Context, token, targetID string) error
	RoleChanges(ctx context.Context, userID string, limit int64) ([]domain.RoleChangeRecord, error)
}
