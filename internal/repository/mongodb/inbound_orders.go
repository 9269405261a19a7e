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

// InboundOrderRepository persists pending inbound orders.
type InboundOrderRepository struct {
	collection *mongo.Collection
}

// NewInboundOrderRepository binds the repository to the pending inbound orders collection.
func NewInboundOrderRepository(db *mongo.Database) *InboundOrderRepository {
	return &InboundOrderRepository{collection: db.Collection(inboundOrdersCollection)}
}

// EnsureIndexes creates the operation number and status indexes.
func (r *InboundOrderRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "operation_number", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expected_arrival_date", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create inbound order indexes: %w", err)
	}
	return nil
}

// Create inserts an order and sets its ID.
func (r *InboundOrderRepository) Create(ctx context.Context, order *models.PendingInboundOrder) error {
	res, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		return fmt.Errorf("insert inbound order: %w", translateWriteError(err))
	}
	order.ID = insertedID(res)
	return nil
}

// FindByID loads one order.
func (r *InboundOrderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.PendingInboundOrder, error) {
	return findOne[models.PendingInboundOrder](ctx, r.collection, bson.M{"_id": id})
}

// List returns orders, optionally filtered by status, by expected arrival
// then creation time.
func (r *InboundOrderRepository) List(ctx context.Context, status models.InboundStatus) ([]models.PendingInboundOrder, error) {
	query := bson.M{}
	if status != "" {
		query["status"] = status
	}

	opts := options.Find().SetSort(bson.D{
		{Key: "expected_arrival_date", Value: 1},
		{Key: "created_at", Value: 1},
	})
	return findAll[models.PendingInboundOrder](ctx, r.collection, query, opts)
}

// Update replaces the stored order.
func (r *InboundOrderRepository) Update(ctx context.Context, order *models.PendingInboundOrder) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": order.ID}, order)
	if err != nil {
		return fmt.Errorf("update inbound order %s: %w", order.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Delete removes an order.
func (r *InboundOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete inbound order %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the number of stored orders.
func (r *InboundOrderRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
