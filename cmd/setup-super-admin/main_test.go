package main

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

type stubUsers struct {
	existing *domain.User
	created  *domain.User
}

func (s *stubUsers) FindFirstByRole(_ context.Context, role domain.Role) (*domain.User, error) {
	if s.existing != nil && s.existing.Role == role {
		return s.existing, nil
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	created := *user
	created.ID = "new-id"
	s.created = &created
	return &created, nil
}

type stubHasher struct{}

func (stubHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }

func input(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n") + "\n"))
}

func TestCreateSuperAdmin(t *testing.T) {
	users := &stubUsers{}

	created, err := createSuperAdmin(context.Background(), users, stubHasher{}, input("root@example.com", "hunter2hunter2"))
	if err != nil {
		t.Fatalf("createSuperAdmin returned error: %v", err)
	}
	if created.Email != "root@example.com" || created.Role != domain.RoleSuperAdmin || !created.IsActive {
		t.Fatalf("unexpected user: %+v", created)
	}
	if created.PasswordHash != "hashed:hunter2hunter2" {
		t.Fatalf("password not hashed: %s", created.PasswordHash)
	}
}

func TestCreateSuperAdmin_RefusesSecond(t *testing.T) {
	users := &stubUsers{existing: &domain.User{ID: "sa", Role: domain.RoleSuperAdmin}}

	_, err := createSuperAdmin(context.Background(), users, stubHasher{}, input("root@example.com", "hunter2hunter2"))
	if !errors.Is(err, domain.ErrSuperAdminExists) {
		t.Fatalf("expected ErrSuperAdminExists, got %v", err)
	}
	if users.created != nil {
		t.Fatalf("no user must be created")
	}
}

func TestCreateSuperAdmin_RejectsBadEmail(t *testing.T) {
	users := &stubUsers{}

	if _, err := createSuperAdmin(context.Background(), users, stubHasher{}, input("not-an-email", "hunter2hunter2")); err == nil {
		t.Fatalf("expected error for invalid email")
	}
}

func TestCreateSuperAdmin_RejectsShortPassword(t *testing.T) {
	users := &stubUsers{}

	if _, err := createSuperAdmin(context.Background(), users, stubHasher{}, input("root@example.com", "short")); err == nil {
		t.Fatalf("expected error for short password")
	}
}
