package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

// RecordFilter narrows warehouse record listings.
type RecordFilter struct {
	ShipmentID *primitive.ObjectID
	OpenOnly   bool
}

// WarehouseRecordRepository persists warehouse records.
type WarehouseRecordRepository struct {
	collection *mongo.Collection
}

// NewWarehouseRecordRepository binds the repository to the warehouse records collection.
func NewWarehouseRecordRepository(db *mongo.Database) *WarehouseRecordRepository {
	return &WarehouseRecordRepository{collection: db.Collection(recordsCollection)}
}

// EnsureIndexes creates the shipment and inbound date indexes.
func (r *WarehouseRecordRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shipment_id", Value: 1}, {Key: "outbound_date", Value: 1}}},
		{Keys: bson.D{{Key: "inbound_date", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create warehouse record indexes: %w", err)
	}
	return nil
}

// Create inserts a record and sets its ID.
func (r *WarehouseRecordRepository) Create(ctx context.Context, record *models.WarehouseRecord) error {
	res, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return fmt.Errorf("insert warehouse record: %w", translateWriteError(err))
	}
	record.ID = insertedID(res)
	return nil
}

// FindByID loads one record.
func (r *WarehouseRecordRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.WarehouseRecord, error) {
	return findOne[models.WarehouseRecord](ctx, r.collection, bson.M{"_id": id})
}

// FindOpenByShipment loads the record of a shipment that has not left yet.
func (r *WarehouseRecordRepository) FindOpenByShipment(ctx context.Context, shipmentID primitive.ObjectID) (*models.WarehouseRecord, error) {
	return findOne[models.WarehouseRecord](ctx, r.collection, bson.M{
		"shipment_id":   shipmentID,
		"outbound_date": nil,
	})
}

// List returns records matching filter ordered by inbound date.
func (r *WarehouseRecordRepository) List(ctx context.Context, filter RecordFilter) ([]models.WarehouseRecord, error) {
	query := bson.M{}
	if filter.ShipmentID != nil {
		query["shipment_id"] = *filter.ShipmentID
	}
	if filter.OpenOnly {
		query["outbound_date"] = nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "inbound_date", Value: 1}})
	return findAll[models.WarehouseRecord](ctx, r.collection, query, opts)
}

// Update replaces the stored record.
func (r *WarehouseRecordRepository) Update(ctx context.Context, record *models.WarehouseRecord) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	if err != nil {
		return fmt.Errorf("update warehouse record %s: %w", record.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdateStorageDays sets the running day count of a record.
func (r *WarehouseRecordRepository) UpdateStorageDays(ctx context.Context, id primitive.ObjectID, days int, at time.Time) error {
	update := bson.M{"$set": bson.M{"storage_days": days, "updated_at": at}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("update storage days of %s: %w", id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Count returns the number of stored records.
func (r *WarehouseRecordRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
