package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

// ShipmentRepository persists shipments.
type ShipmentRepository struct {
	collection *mongo.Collection
}

// NewShipmentRepository binds the repository to the shipments collection.
func NewShipmentRepository(db *mongo.Database) *ShipmentRepository {
	return &ShipmentRepository{collection: db.Collection(shipmentsCollection)}
}

// EnsureIndexes creates the unique shipment number and lookup indexes.
func (r *ShipmentRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "shipment_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "operation_number", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create shipment indexes: %w", err)
	}
	return nil
}

// Create inserts a shipment and sets its ID.
func (r *ShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	res, err := r.collection.InsertOne(ctx, shipment)
	if err != nil {
		return fmt.Errorf("insert shipment: %w", translateWriteError(err))
	}
	shipment.ID = insertedID(res)
	return nil
}

// FindByID loads one shipment.
func (r *ShipmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error) {
	return findOne[models.Shipment](ctx, r.collection, bson.M{"_id": id})
}

// FindByIDs loads the shipments matching ids, in no particular order.
func (r *ShipmentRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Shipment, error) {
	if len(ids) == 0 {
		return []models.Shipment{}, nil
	}
	return findAll[models.Shipment](ctx, r.collection, bson.M{"_id": bson.M{"$in": ids}})
}

// List returns every shipment, oldest first.
func (r *ShipmentRepository) List(ctx context.Context) ([]models.Shipment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return findAll[models.Shipment](ctx, r.collection, bson.M{}, opts)
}

// Update replaces the stored shipment.
func (r *ShipmentRepository) Update(ctx context.Context, shipment *models.Shipment) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": shipment.ID}, shipment)
	if err != nil {
		return fmt.Errorf("update shipment %s: %w", shipment.ID.Hex(), translateWriteError(err))
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes a shipment.
func (r *ShipmentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete shipment %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the number of stored shipments.
func (r *ShipmentRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
