package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/ports"
)

// promotionTokenBytes is the entropy of a promotion token value. 32 bytes
// hex-encode to a 64-character string.
const promotionTokenBytes = 32

// RoleService owns the promotion-token lifecycle and the role-transition
// rules. It holds no mutable state of its own; every cross-request guarantee
// is delegated to the repository's atomic operations.
type RoleService struct {
	users     ports.UserRepository
	authority ports.RoleAuthorityRepository
	events    ports.SecurityEventSink
	logger    zerolog.Logger
}

func NewRoleService(users ports.UserRepository, authority ports.RoleAuthorityRepository, events ports.SecurityEventSink, logger zerolog.Logger) *RoleService {
	return &RoleService{users: users, authority: authority, events: events, logger: logger}
}

// ChangeUserRole applies a role mutation on behalf of actorID. Only a
// SUPER_ADMIN actor may change roles, SUPER_ADMIN itself can be neither
// granted nor revoked here (that happens only through the bootstrap CLI),
// and the update lands together with its audit record in one transaction.
func (s *RoleService) ChangeUserRole(ctx context.Context, actorID, targetID string, nextRole domain.Role) error {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrForbidden
		}
		return err
	}
	if actor.Role != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	if err := validateTransition(target.Role, nextRole); err != nil {
		return err
	}

	if err := s.authority.UpdateRoleWithAudit(ctx, targetID, target.Role, nextRole, actorID); err != nil {
		return err
	}

	s.logger.Info().
		Str("target_id", targetID).
		Str("previous_role", string(target.Role)).
		Str("next_role", string(nextRole)).
		Str("changed_by", actorID).
		Msg("user role changed")

	s.events.Record(domain.SecurityEvent{
		Kind:       domain.EventRoleChanged,
		ActorID:    actorID,
		TargetID:   targetID,
		Detail:     fmt.Sprintf("%s -> %s", target.Role, nextRole),
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// IssuePromotionToken mints a single-use token delegating the actor's
// authority to promote one user to ADMIN. The workflow is scoped to exactly
// that escalation tier; any other nextRole is rejected.
func (s *RoleService) IssuePromotionToken(ctx context.Context, actorID string, nextRole domain.Role) (string, error) {
	actor, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrForbidden
		}
		return "", err
	}
	if actor.Role != domain.RoleSuperAdmin {
		return "", domain.ErrForbidden
	}
	if nextRole != domain.RoleAdmin {
		return "", domain.ErrUnsupportedRole
	}

	buf := make([]byte, promotionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate promotion token: %w", err)
	}
	token := hex.EncodeToString(buf)

	promo := &domain.PromotionToken{
		Token:     token,
		NextRole:  nextRole,
		CreatedBy: actorID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.authority.CreatePromotionToken(ctx, promo); err != nil {
		return "", err
	}

	s.logger.Info().Str("created_by", actorID).Str("next_role", string(nextRole)).Msg("promotion token issued")

	s.events.Record(domain.SecurityEvent{
		Kind:       domain.EventPromotionIssued,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	})

	return token, nil
}

// RedeemPromotionToken consumes a promotion token and promotes targetID. The
// redeemer needs no privilege of their own: the token carries its issuer's
// authority, and that issuer held SUPER_ADMIN at issuance and cannot lose it
// through the runtime API.
//
// ClaimPromotionToken is the serialization point: its conditional flip of
// used from false to true admits exactly one of any set of concurrent
// redeemers, so a token can never apply two role changes. The transition is
// pre-validated so a change that is doomed anyway does not consume the token.
func (s *RoleService) RedeemPromotionToken(ctx context.Context, token, targetID string) error {
	promo, err := s.authority.FindPromotionTokenByValue(ctx, token)
	if err != nil {
		return err
	}
	if promo.Used {
		return domain.ErrForbidden
	}

	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := validateTransition(target.Role, promo.NextRole); err != nil {
		return err
	}

	if err := s.authority.ClaimPromotionToken(ctx, token); err != nil {
		return err
	}

	if err := s.ChangeUserRole(ctx, promo.CreatedBy, targetID, promo.NextRole); err != nil {
		// The token is already consumed; a failure here leaves it spent
		// without an applied change. Fail closed rather than risking a
		// second redemption.
		s.logger.Error().Err(err).Str("target_id", targetID).Msg("role change failed after token claim")
		return err
	}

	s.events.Record(domain.SecurityEvent{
		Kind:       domain.EventPromotionRedeemed,
		ActorID:    promo.CreatedBy,
		TargetID:   targetID,
		OccurredAt: time.Now().UTC(),
	})

	return nil
}

// RoleChanges lists audit entries, newest first.
func (s *RoleService) RoleChanges(ctx context.Context, userID string, limit int64) ([]domain.RoleChangeRecord, error) {
	return s.authority.ListRoleChanges(ctx, userID, limit)
}

// validateTransition enforces the role-transition rules shared by direct
// changes and token redemption:
//   - SUPER_ADMIN is never demoted through this path.
//   - SUPER_ADMIN is never granted through this path; it is provisioned
//     only by the bootstrap CLI.
//   - A transition to the current role is a no-op and is rejected.
func validateTransition(current, next domain.Role) error {
	if !next.Valid() {
		return domain.ErrUnsupportedRole
	}
	if current == domain.RoleSuperAdmin && next != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	if next == domain.RoleSuperAdmin && current != domain.RoleSuperAdmin {
		return domain.ErrForbidden
	}
	if current == next {
		return domain.ErrRoleUnchanged
	}
	return nil
}
