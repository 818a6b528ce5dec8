package domain

import "time"

// SecurityEventKind labels an observational security event.
type SecurityEventKind string

const (
	EventLoginSucceeded    SecurityEventKind = "login_succeeded"
	EventLoginFailed       SecurityEventKind = "login_failed"
	EventRoleChanged       SecurityEventKind = "role_changed"
	EventPromotionIssued   SecurityEventKind = "promotion_issued"
	EventPromotionRedeemed SecurityEventKind = "promotion_redeemed"
)

// SecurityEvent is a best-effort observational record of a security-relevant
// action. It is written asynchronously and is not part of the transactional
// audit trail; RoleChangeRecord remains the authoritative log for role
// mutations.
type SecurityEvent struct {
	Kind       SecurityEventKind `json:"kind"`
	ActorID    string            `json:"actor_id,omitempty"`
	Email      string            `json:"email,omitempty"`
	TargetID   string            `json:"target_id,omitempty"`
	Detail     string            `json:"detail,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// ShardKey returns the value used to route the event to a dispatcher worker,
// keeping per-subject ordering stable.
func (e SecurityEvent) ShardKey() string {
	if e.ActorID != "" {
		return e.ActorID
	}
	return e.Email
}
