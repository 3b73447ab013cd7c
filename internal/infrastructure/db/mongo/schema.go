package mongo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the unique indexes the auth flow relies on. Register's
// existence checks race with each other; these indexes are what actually keep
// emails, usernames and role assignments unique.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		accountCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(accountEmailIndex)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(accountUsernameIndex)},
		},
		roleCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("roles_name_unique")},
		},
		assignmentCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("user_roles_user_unique")},
		},
		authEventCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}}, Options: options.Index().SetName("auth_events_user_time")},
		},
	}

	for coll, models := range specs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// SeedRoles makes sure every named role exists. Existing roles keep their ids.
func SeedRoles(ctx context.Context, db *mongo.Database, names ...string) error {
	roles := db.Collection(roleCollection)
	for _, name := range names {
		_, err := roles.UpdateOne(ctx,
			bson.M{"name": name},
			bson.M{"$setOnInsert": bson.M{"_id": uuid.NewString(), "name": name}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seed role %q: %w", name, err)
		}
	}
	return nil
}
