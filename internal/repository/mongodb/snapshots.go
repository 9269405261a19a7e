package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

// SnapshotRepository persists daily storage fee snapshots.
type SnapshotRepository struct {
	collection *mongo.Collection
}

// NewSnapshotRepository binds the repository to the snapshots collection.
func NewSnapshotRepository(db *mongo.Database) *SnapshotRepository {
	return &SnapshotRepository{collection: db.Collection(snapshotsCollection)}
}

// EnsureIndexes makes the snapshot date unique.
func (r *SnapshotRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "date", Value: -1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create snapshot indexes: %w", err)
	}
	return nil
}

// SaveSnapshot upserts the snapshot of its date, so a rerun replaces it.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, snapshot models.StorageFeeSnapshot) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"date": snapshot.Date}, snapshot, opts); err != nil {
		return fmt.Errorf("failed to save storage fee snapshot: %w", err)
	}
	return nil
}

// Recent returns the latest snapshots, newest first.
func (r *SnapshotRepository) Recent(ctx context.Context, limit int64) ([]models.StorageFeeSnapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(limit)
	return findAll[models.StorageFeeSnapshot](ctx, r.collection, bson.M{}, opts)
}
