package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

const securityEventCollection = "security_events"

// MongoSecurityEventRepository appends observational security events. The
// collection is write-only from the service's point of view.
type MongoSecurityEventRepository struct {
	coll *mongo.Collection
}

func NewSecurityEventRepository(db *mongo.Database) *MongoSecurityEventRepository {
	return &MongoSecurityEventRepository{coll: db.Collection(securityEventCollection)}
}

type mongoSecurityEvent struct {
	Kind       string `bson:"kind"`
	ActorID    string `bson:"actor_id,omitempty"`
	Email      string `bson:"email,omitempty"`
	TargetID   string `bson:"target_id,omitempty"`
	Detail     string `bson:"detail,omitempty"`
	OccurredAt int64  `bson:"occurred_at"`
}

func (r *MongoSecurityEventRepository) Append(ctx context.Context, event *domain.SecurityEvent) error {
	doc := mongoSecurityEvent{
		Kind:       string(event.Kind),
		ActorID:    event.ActorID,
		Email:      event.Email,
		TargetID:   event.TargetID,
		Detail:     event.Detail,
		OccurredAt: event.OccurredAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return wrapStoreErr("append security event", err)
	}
	return nil
}
