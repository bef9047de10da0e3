package campwatch

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	Register(Migration{
		Version:     "001_create_crew_archive_indexes",
		Description: "Create indexes for the crew_archive collection",
		Up:          up001,
		Down:        down001,
	})
}

func up001(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("crew_archive")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "last_activity_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "classification", Value: 1}, {Key: "last_activity_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "current_system_id", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return err
	}
	return nil
}

func down001(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("crew_archive")
	if _, err := collection.Indexes().DropAll(ctx); err != nil {
		return err
	}
	return nil
}
