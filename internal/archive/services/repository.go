package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-falcon/internal/activity/dto"
)

// Repository persists closed crew sessions ("hands off closed sessions" —
// spec.md §4.5), grounded on internal/zkillboard/services/repository.go's
// upsert-by-id + CreateIndexes pattern.
type Repository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewRepository wires a Repository to the crew_archive collection.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		db:         db,
		collection: db.Collection("crew_archive"),
	}
}

// CreateIndexes creates the archive's lookup indexes: unique crew id, and
// time/classification indexes for the migration tooling's range scans.
func (r *Repository) CreateIndexes(ctx context.Context) error {
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
	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create crew_archive indexes: %w", err)
	}
	return nil
}

// Save upserts one archived crew by id, the same fire-and-forget handoff
// spec.md §1 describes ("archive writes are fire-and-forget handoffs of
// closed sessions").
func (r *Repository) Save(ctx context.Context, crew dto.SerializedCrew) error {
	filter := bson.M{"id": crew.ID}
	update := bson.M{"$set": crew, "$currentDate": bson.M{"archived_at": true}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("archive crew %s: %w", crew.ID, err)
	}
	return nil
}

// SaveBatch archives multiple crews, used by Registry.DrainArchive's output.
func (r *Repository) SaveBatch(ctx context.Context, crews []dto.SerializedCrew) error {
	for _, c := range crews {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves one archived crew by id, returning nil and no error
// when no archived crew has that id.
func (r *Repository) FindByID(ctx context.Context, id string) (*dto.SerializedCrew, error) {
	var crew dto.SerializedCrew
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&crew)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find archived crew %s: %w", id, err)
	}
	return &crew, nil
}

// ListRecent returns the most recently archived crews, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int64) ([]dto.SerializedCrew, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_activity_at", Value: -1}}).SetLimit(limit)
	cur, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list archived crews: %w", err)
	}
	defer cur.Close(ctx)

	var out []dto.SerializedCrew
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode archived crews: %w", err)
	}
	return out, nil
}

// ListSince returns archived crews last active at or after `since`.
func (r *Repository) ListSince(ctx context.Context, since time.Time) ([]dto.SerializedCrew, error) {
	filter := bson.M{"last_activity_at": bson.M{"$gte": since.UnixMilli()}}
	cur, err := r.db.Collection("crew_archive").Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list archived crews since %s: %w", since, err)
	}
	defer cur.Close(ctx)

	var out []dto.SerializedCrew
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode archived crews: %w", err)
	}
	return out, nil
}
