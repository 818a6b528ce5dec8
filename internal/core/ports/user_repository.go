package ports

import (
	"context"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

// UserRepository defines the persistence contract for user accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// FindFirstByRole returns any one user holding the given role, or
	// domain.ErrUserNotFound when none exists. Used by the bootstrap path
	// to refuse creating a second SUPER_ADMIN.
	FindFirstByRole(ctx context.Context, role domain.Role) (*domain.User, error)
}
