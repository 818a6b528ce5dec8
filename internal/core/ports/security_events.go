package ports

import (
	"context"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

// SecurityEventSink accepts observational security events for asynchronous
// recording. Record must not block the caller; events may be dropped under
// backpressure.
type SecurityEventSink interface {
	Record(event domain.SecurityEvent)
}

// SecurityEventStore persists security events durably.
type SecurityEventStore interface {
	Append(ctx context.Context, event *domain.SecurityEvent) error
}
