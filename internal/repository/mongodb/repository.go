package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

const (
	shipmentsCollection     = "shipments"
	recordsCollection       = "warehouse_records"
	inboundOrdersCollection = "pending_inbound_orders"
	snapshotsCollection     = "storage_fee_snapshots"
)

// Store owns the MongoDB client and hands out per-collection repositories.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials MongoDB and verifies the connection.
func Connect(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Database returns the application database.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Ping checks the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexers := []interface {
		EnsureIndexes(ctx context.Context) error
	}{
		NewShipmentRepository(s.db),
		NewWarehouseRecordRepository(s.db),
		NewInboundOrderRepository(s.db),
		NewSnapshotRepository(s.db),
	}

	for _, ix := range indexers {
		if err := ix.EnsureIndexes(ctx); err != nil {
			return err
		}
	}
	return nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}) (*T, error) {
	var item T
	if err := coll.FindOne(ctx, filter).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		return id
	}
	return primitive.NilObjectID
}

func translateWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	}
	return err
}
