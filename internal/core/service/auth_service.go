package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/accesskeeper/identity-system/internal/core/domain"
	"github.com/accesskeeper/identity-system/internal/core/ports"
)

// AuthService verifies stored credentials and issues bearer tokens. It is
// read-only against the user store.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	issuer ports.TokenIssuer
	events ports.SecurityEventSink
	logger zerolog.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, issuer ports.TokenIssuer, events ports.SecurityEventSink, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, issuer: issuer, events: events, logger: logger}
}

// Authenticate looks up the user by email and verifies the password.
// Unknown email, inactive account, and hash mismatch are deliberately
// indistinguishable: all three return domain.ErrInvalidCredentials.
// Store or hasher failures are passed through untouched so a timeout is
// never reported as a credential failure.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.Claim, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordFailure(email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.recordFailure(email)
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.recordFailure(email)
		return nil, domain.ErrInvalidCredentials
	}

	s.events.Record(domain.SecurityEvent{
		Kind:       domain.EventLoginSucceeded,
		ActorID:    user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	})

	return &domain.Claim{SubjectID: user.ID, Email: user.Email, Role: user.Role}, nil
}

// IssueToken signs the claim into a bearer token. The signing secret is a
// startup precondition of the issuer; by the time traffic reaches this
// method it is guaranteed to be set.
func (s *AuthService) IssueToken(claim domain.Claim) (string, int64, error) {
	token, expiresAt, err := s.issuer.Sign(claim)
	if err != nil {
		s.logger.Error().Err(err).Str("subject", claim.SubjectID).Msg("token signing failed")
		return "", 0, err
	}
	return token, expiresAt, nil
}

func (s *AuthService) recordFailure(email string) {
	s.events.Record(domain.SecurityEvent{
		Kind:       domain.EventLoginFailed,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	})
}
