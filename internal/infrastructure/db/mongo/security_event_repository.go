package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/actu/newsroom/internal/core/domain"
)

// SecurityEventRepository appends audit events to the security_events
// collection.
type SecurityEventRepository struct {
	coll *mongo.Collection
}

func NewSecurityEventRepository(db *mongo.Database) *SecurityEventRepository {
	return &SecurityEventRepository{coll: db.Collection(securityEventsCollection)}
}

// Insert persists one event.
func (r *SecurityEventRepository) Insert(ctx context.Context, event *domain.SecurityEvent) error {
	doc := bson.M{
		"kind":        string(event.Kind),
		"at":          event.At.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.AccountID != "" {
		doc["account_id"] = event.AccountID
	}
	if event.TokenID != "" {
		doc["token_id"] = event.TokenID
	}
	if event.Actor != "" {
		doc["actor"] = event.Actor
	}
	if event.Transport != "" {
		doc["transport"] = event.Transport
	}
	if event.Detail != "" {
		doc["detail"] = event.Detail
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert security event: %w", err)
	}
	return nil
}
