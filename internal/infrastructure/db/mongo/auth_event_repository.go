package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pskiad17/FinancialOrganizer/internal/core/domain"
)

const authEventCollection = "auth_events"

// AuthEventRepository implements ports.AuthEventRepository using MongoDB.
type AuthEventRepository struct {
	coll *mongo.Collection
}

func NewAuthEventRepository(db *mongo.Database) *AuthEventRepository {
	return &AuthEventRepository{coll: db.Collection(authEventCollection)}
}

// InsertAuthEvent appends an event to the auth_events audit collection.
func (r *AuthEventRepository) InsertAuthEvent(ctx context.Context, event domain.AuthEvent) error {
	doc := bson.M{
		"kind":        string(event.Kind),
		"outcome":     event.Outcome,
		"occurred_at": event.OccurredAt.UTC(),
		"recorded_at": time.Now().UTC(),
	}
	if event.UserID != "" {
		doc["user_id"] = event.UserID
	}
	if event.Email != "" {
		doc["email"] = event.Email
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
