package inbound

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type orderStore struct {
	items      map[primitive.ObjectID]models.PendingInboundOrder
	lastStatus models.InboundStatus
}

func (s *orderStore) Create(_ context.Context, order *models.PendingInboundOrder) error {
	order.ID = primitive.NewObjectID()
	s.items[order.ID] = *order
	return nil
}

func (s *orderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.PendingInboundOrder, error) {
	order, ok := s.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &order, nil
}

func (s *orderStore) List(_ context.Context, status models.InboundStatus) ([]models.PendingInboundOrder, error) {
	s.lastStatus = status
	out := []models.PendingInboundOrder{}
	for _, order := range s.items {
		if status == "" || order.Status == status {
			out = append(out, order)
		}
	}
	return out, nil
}

func (s *orderStore) Update(_ context.Context, order *models.PendingInboundOrder) error {
	if _, ok := s.items[order.ID]; !ok {
		return models.ErrNotFound
	}
	s.items[order.ID] = *order
	return nil
}

func (s *orderStore) Delete(_ context.Context, id primitive.ObjectID) error {
	if _, ok := s.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

type shipmentFinder map[primitive.ObjectID]models.Shipment

func (f shipmentFinder) FindByID(_ context.Context, id primitive.ObjectID) (*models.Shipment, error) {
	sh, ok := f[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &sh, nil
}

func newTestService(shipments shipmentFinder) (*Service, *orderStore) {
	store := &orderStore{items: map[primitive.ObjectID]models.PendingInboundOrder{}}
	svc := NewService(store, shipments, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func TestCreateDefaults(t *testing.T) {
	svc, store := newTestService(nil)
	arrival := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)

	order, err := svc.Create(context.Background(), CreateInput{
		OperationNumber:     "OP-7",
		ExpectedArrivalDate: arrival,
		ContactPerson:       "Awa",
	})
	require.NoError(t, err)

	assert.Equal(t, models.InboundAwaitingPickup, order.Status)
	assert.Equal(t, 1, order.Quantity)
	assert.True(t, arrival.Equal(order.ExpectedArrivalDate))
	assert.True(t, fixedNow.Equal(order.CreatedAt))
	assert.Contains(t, store.items, order.ID)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(nil)
	arrival := fixedNow.Add(24 * time.Hour)
	zero := 0

	cases := map[string]CreateInput{
		"missing operation": {ExpectedArrivalDate: arrival},
		"missing arrival":   {OperationNumber: "OP-1"},
		"unknown status":    {OperationNumber: "OP-1", ExpectedArrivalDate: arrival, Status: "lost"},
		"zero quantity":     {OperationNumber: "OP-1", ExpectedArrivalDate: arrival, Quantity: &zero},
	}

	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, models.ErrInvalidInput)
		})
	}
}

func TestListFiltersByStatus(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	arrival := fixedNow.Add(24 * time.Hour)

	_, err := svc.Create(ctx, CreateInput{OperationNumber: "OP-1", ExpectedArrivalDate: arrival})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{OperationNumber: "OP-2", ExpectedArrivalDate: arrival, Status: models.InboundPickingUp})
	require.NoError(t, err)

	orders, err := svc.List(ctx, models.InboundPickingUp)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "OP-2", orders[0].OperationNumber)
	assert.Equal(t, models.InboundPickingUp, store.lastStatus)

	_, err = svc.List(ctx, "unknown")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{OperationNumber: "OP-1", ExpectedArrivalDate: fixedNow})
	require.NoError(t, err)

	status := models.InboundDelivered
	remarks := "two pallets"
	updated, err := svc.Update(ctx, order.ID, UpdateInput{Status: &status, Remarks: &remarks})
	require.NoError(t, err)
	assert.Equal(t, models.InboundDelivered, updated.Status)
	assert.Equal(t, "two pallets", updated.Remarks)
	assert.Equal(t, "OP-1", updated.OperationNumber)

	bad := models.InboundStatus("gone")
	_, err = svc.Update(ctx, order.ID, UpdateInput{Status: &bad})
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = svc.Update(ctx, primitive.NewObjectID(), UpdateInput{})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestComplete(t *testing.T) {
	shipmentID := primitive.NewObjectID()
	svc, store := newTestService(shipmentFinder{shipmentID: {ID: shipmentID}})
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{OperationNumber: "OP-1", ExpectedArrivalDate: fixedNow})
	require.NoError(t, err)

	_, err = svc.Complete(ctx, order.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, store.items[order.ID].CompletedAt)

	completed, err := svc.Complete(ctx, order.ID, shipmentID)
	require.NoError(t, err)
	assert.Equal(t, models.InboundReceived, completed.Status)
	require.NotNil(t, completed.CompletedAt)
	assert.True(t, fixedNow.Equal(*completed.CompletedAt))
	assert.Equal(t, shipmentID, *completed.ShipmentID)

	_, err = svc.Complete(ctx, order.ID, shipmentID)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
}

func TestDelete(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	order, err := svc.Create(ctx, CreateInput{OperationNumber: "OP-1", ExpectedArrivalDate: fixedNow})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, order.ID))
	assert.ErrorIs(t, svc.Delete(ctx, order.ID), models.ErrNotFound)
}
