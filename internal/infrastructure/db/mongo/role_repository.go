package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/accesskeeper/identity-system/internal/core/domain"
)

const (
	promotionCollection  = "promotion_tokens"
	roleChangeCollection = "role_changes"
)

// MongoRoleAuthorityRepository persists promotion tokens and the role-change
// audit trail. It holds the client as well as the collections because the
// role-update/audit pair runs inside a session transaction.
type MongoRoleAuthorityRepository struct {
	client  *mongo.Client
	users   *mongo.Collection
	tokens  *mongo.Collection
	changes *mongo.Collection
}

func NewRoleAuthorityRepository(client *mongo.Client, db *mongo.Database) *MongoRoleAuthorityRepository {
	return &MongoRoleAuthorityRepository{
		client:  client,
		users:   db.Collection(userCollection),
		tokens:  db.Collection(promotionCollection),
		changes: db.Collection(roleChangeCollection),
	}
}

type mongoPromotionToken struct {
	Token     string `bson:"token"`
	NextRole  string `bson:"next_role"`
	CreatedBy string `bson:"created_by"`
	Used      bool   `bson:"used"`
	UsedAt    int64  `bson:"used_at,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

type mongoRoleChange struct {
	UserID       string `bson:"user_id"`
	PreviousRole string `bson:"previous_role"`
	NextRole     string `bson:"next_role"`
	ChangedBy    string `bson:"changed_by"`
	ChangedAt    int64  `bson:"changed_at"`
}

func (r *MongoRoleAuthorityRepository) CreatePromotionToken(ctx context.Context, token *domain.PromotionToken) error {
	doc := mongoPromotionToken{
		Token:     token.Token,
		NextRole:  string(token.NextRole),
		CreatedBy: token.CreatedBy,
		Used:      false,
		CreatedAt: token.CreatedAt.Unix(),
	}
	if _, err := r.tokens.InsertOne(ctx, doc); err != nil {
		return wrapStoreErr("insert promotion token", err)
	}
	return nil
}

func (r *MongoRoleAuthorityRepository) FindPromotionTokenByValue(ctx context.Context, token string) (*domain.PromotionToken, error) {
	var mt mongoPromotionToken
	if err := r.tokens.FindOne(ctx, bson.M{"token": token}).Decode(&mt); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Unknown and spent tokens are indistinguishable to redeemers.
			return nil, domain.ErrForbidden
		}
		return nil, wrapStoreErr("find promotion token", err)
	}

	out := &domain.PromotionToken{
		Token:     mt.Token,
		NextRole:  domain.Role(mt.NextRole),
		CreatedBy: mt.CreatedBy,
		Used:      mt.Used,
		CreatedAt: unixToTime(mt.CreatedAt),
	}
	if mt.UsedAt != 0 {
		usedAt := unixToTime(mt.UsedAt)
		out.UsedAt = &usedAt
	}
	return out, nil
}

// ClaimPromotionToken is a single conditional update: only a document still
// carrying used=false matches, so of any number of concurrent claims exactly
// one flips the flag and the rest observe ErrForbidden.
func (r *MongoRoleAuthorityRepository) ClaimPromotionToken(ctx context.Context, token string) error {
	res := r.tokens.FindOneAndUpdate(ctx,
		bson.M{"token": token, "used": false},
		bson.M{"$set": bson.M{"used": true, "used_at": time.Now().UTC().Unix()}},
	)
	if err := res.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrForbidden
		}
		return wrapStoreErr("claim promotion token", err)
	}
	return nil
}

// UpdateRoleWithAudit applies the role change and appends its audit record
// inside one session transaction. The user update is conditional on the
// role still being previous, so the recorded previous_role can never drift
// from what was actually replaced.
func (r *MongoRoleAuthorityRepository) UpdateRoleWithAudit(ctx context.Context, targetID string, previous, next domain.Role, changedBy string) error {
	oid, err := primitive.ObjectIDFromHex(targetID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	session, err := r.client.StartSession()
	if err != nil {
		return wrapStoreErr("start session", err)
	}
	defer session.EndSession(ctx)

	now := time.Now().UTC()
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.users.UpdateOne(sc,
			bson.M{"_id": oid, "role": string(previous)},
			bson.M{"$set": bson.M{"role": string(next), "updated_at": now.Unix()}},
		)
		if err != nil {
			return nil, wrapStoreErr("update role", err)
		}
		if res.MatchedCount == 0 {
			// The role moved underneath us; the caller's precondition is
			// stale and the whole operation is retryable.
			return nil, fmt.Errorf("role changed concurrently: %w", domain.ErrUnavailable)
		}

		_, err = r.changes.InsertOne(sc, mongoRoleChange{
			UserID:       targetID,
			PreviousRole: string(previous),
			NextRole:     string(next),
			ChangedBy:    changedBy,
			ChangedAt:    now.Unix(),
		})
		if err != nil {
			return nil, wrapStoreErr("append role change", err)
		}
		return nil, nil
	})
	return err
}

func (r *MongoRoleAuthorityRepository) ListRoleChanges(ctx context.Context, userID string, limit int64) ([]domain.RoleChangeRecord, error) {
	filter := bson.M{}
	if userID != "" {
		filter["user_id"] = userID
	}

	opts := options.Find().SetSort(bson.D{{Key: "changed_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.changes.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapStoreErr("list role changes", err)
	}
	defer cursor.Close(ctx)

	var out []domain.RoleChangeRecord
	for cursor.Next(ctx) {
		var mc mongoRoleChange
		if err := cursor.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode role change: %w", err)
		}
		out = append(out, domain.RoleChangeRecord{
			UserID:       mc.UserID,
			PreviousRole: domain.Role(mc.PreviousRole),
			NextRole:     domain.Role(mc.NextRole),
			ChangedBy:    mc.ChangedBy,
			ChangedAt:    unixToTime(mc.ChangedAt),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, wrapStoreErr("list role changes", err)
	}
	return out, nil
}
