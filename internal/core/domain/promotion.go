package domain

import "time"

// PromotionToken is a single-use credential delegating its issuer's
// authority to promote one user to the embedded next role.
//
// Lifecycle: issued → redeemed (terminal). Used is true if and only if
// UsedAt is set.
type PromotionToken struct {
	Token     string     `json:"token"`
	NextRole  Role       `json:"next_role"`
	CreatedBy string     `json:"created_by"`
	Used      bool       `json:"used"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// RoleChangeRecord is one append-only audit entry for a successful role
// mutation. Records are never updated or deleted.
type RoleChangeRecord struct {
	UserID       string    `json:"user_id"`
	PreviousRole Role      `json:"previous_role"`
	NextRole     Role      `json:"next_role"`
	ChangedBy    string    `json:"changed_by"`
	ChangedAt    time.Time `json:"changed_at"`
}
