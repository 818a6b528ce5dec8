package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
	// findErr, when set, is returned by every lookup to simulate an
	// unavailable store.
	findErr error
}

func newStubUserRepo(users ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[user.ID]; exists {
		return nil, domain.ErrUserExists
	}
	r.users[user.ID] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) FindFirstByRole(_ context.Context, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == role {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) role(id string) domain.Role {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].Role
}

// stubAuthorityRepo backs the role-authority contract with mutex-guarded
// maps; ClaimPromotionToken and UpdateRoleWithAudit are atomic the same way
// the real store's conditional updates are.
type stubAuthorityRepo struct {
	mu      sync.Mutex
	users   *stubUserRepo
	tokens  map[string]*domain.PromotionToken
	changes []domain.RoleChangeRecord
}

func newStubAuthorityRepo(users *stubUserRepo) *stubAuthorityRepo {
	return &stubAuthorityRepo{users: users, tokens: make(map[string]*domain.PromotionToken)}
}

func (r *stubAuthorityRepo) CreatePromotionToken(_ context.Context, token *domain.PromotionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[token.Token]; exists {
		return fmt.Errorf("duplicate token value")
	}
	clone := *token
	r.tokens[token.Token] = &clone
	return nil
}

func (r *stubAuthorityRepo) FindPromotionTokenByValue(_ context.Context, token string) (*domain.PromotionToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok {
		return nil, domain.ErrForbidden
	}
	clone := *t
	return &clone, nil
}

func (r *stubAuthorityRepo) ClaimPromotionToken(_ context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tokens[token]
	if !ok || t.Used {
		return domain.ErrForbidden
	}
	now := time.Now().UTC()
	t.Used = true
	t.UsedAt = &now
	return nil
}

func (r *stubAuthorityRepo) UpdateRoleWithAudit(_ context.Context, targetID string, previous, next domain.Role, changedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	target, ok := r.users.users[targetID]
	if !ok || target.Role != previous {
		return domain.ErrUnavailable
	}
	target.Role = next
	r.changes = append(r.changes, domain.RoleChangeRecord{
		UserID:       targetID,
		PreviousRole: previous,
		NextRole:     next,
		ChangedBy:    changedBy,
		ChangedAt:    time.Now().UTC(),
	})
	return nil
}

func (r *stubAuthorityRepo) ListRoleChanges(_ context.Context, userID string, limit int64) ([]domain.RoleChangeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RoleChangeRecord
	for i := len(r.changes) - 1; i >= 0; i-- {
		if userID != "" && r.changes[i].UserID != userID {
			continue
		}
		out = append(out, r.changes[i])
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (r *stubAuthorityRepo) auditCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.changes)
}

// plainHasher is a transparent PasswordHasher for core tests; the real
// argon2id implementation is covered in its own package.
type plainHasher struct{}

func (plainHasher) Hash(plaintext string) (string, error) {
	return "hashed:" + plaintext, nil
}

func (plainHasher) Verify(digest, plaintext string) (bool, error) {
	return strings.TrimPrefix(digest, "hashed:") == plaintext, nil
}

type failingHasher struct{ err error }

func (h failingHasher) Hash(string) (string, error)         { return "", h.err }
func (h failingHasher) Verify(string, string) (bool, error) { return false, h.err }

type stubIssuer struct{}

func (stubIssuer) Sign(claim domain.Claim) (string, int64, error) {
	return "token-for-" + claim.SubjectID, time.Now().Add(time.Hour).Unix(), nil
}

func (stubIssuer) Decode(token string) (*domain.Claim, error) {
	id := strings.TrimPrefix(token, "token-for-")
	if id == token {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Claim{SubjectID: id}, nil
}

// recordingSink captures security events synchronously.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.SecurityEvent
}

func (s *recordingSink) Record(event domain.SecurityEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *recordingSink) kinds() []domain.SecurityEventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.SecurityEventKind, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Kind)
	}
	return out
}
