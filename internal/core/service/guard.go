package service

import "github.com/accesskeeper/identity-system/internal/core/domain"

// Authorize decides whether a caller holding callerRole may invoke an
// operation declaring required roles. An empty or nil required set means the
// operation is open to any authenticated caller. Pure function of its inputs;
// the caller's role must already have been established by decoding a bearer
// token.
func Authorize(required []domain.Role, callerRole domain.Role) error {
	if len(required) == 0 {
		return nil
	}
	for _, r := range required {
		if r == callerRole {
			return nil
		}
	}
	return domain.ErrInsufficientRole
}
