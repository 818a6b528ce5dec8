package service

import (
	"errors"
	"testing"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

func TestAuthorize(t *testing.T) {
	cases := []struct {
		name     string
		required []domain.Role
		caller   domain.Role
		wantErr  error
	}{
		{"no declared roles allows anyone", nil, domain.RoleUser, nil},
		{"empty set allows anyone", []domain.Role{}, domain.RoleUser, nil},
		{"member allowed", []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}, domain.RoleAdmin, nil},
		{"super admin allowed where listed", []domain.Role{domain.RoleSuperAdmin}, domain.RoleSuperAdmin, nil},
		{"non-member denied", []domain.Role{domain.RoleSuperAdmin}, domain.RoleAdmin, domain.ErrInsufficientRole},
		{"user denied admin route", []domain.Role{domain.RoleAdmin}, domain.RoleUser, domain.ErrInsufficientRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Same output across repeated calls: Authorize is pure.
			for i := 0; i < 2; i++ {
				err := Authorize(tc.required, tc.caller)
				if tc.wantErr == nil && err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
			}
		})
	}
}
