package inbound

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
)

// ErrAlreadyCompleted is returned when completing an order twice.
var ErrAlreadyCompleted = errors.New("inbound order already completed")

// Repository is the pending inbound order persistence the service needs.
type Repository interface {
	Create(ctx context.Context, order *models.PendingInboundOrder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.PendingInboundOrder, error)
	List(ctx context.Context, status models.InboundStatus) ([]models.PendingInboundOrder, error)
	Update(ctx context.Context, order *models.PendingInboundOrder) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ShipmentFinder checks the shipment an order is completed with.
type ShipmentFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error)
}

// CreateInput announces expected cargo.
type CreateInput struct {
	OperationNumber     string
	ExpectedArrivalDate time.Time
	Status              models.InboundStatus
	Quantity            *int
	Description         string
	ContactPerson       string
	ContactPhone        string
	Remarks             string
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	OperationNumber     *string
	ExpectedArrivalDate *time.Time
	Status              *models.InboundStatus
	Quantity            *int
	Description         *string
	ContactPerson       *string
	ContactPhone        *string
	Remarks             *string
}

// Service manages pending inbound orders.
type Service struct {
	repo      Repository
	shipments ShipmentFinder
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires an inbound order service.
func NewService(repo Repository, shipments ShipmentFinder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, shipments: shipments, logger: logger, now: time.Now}
}

// List returns orders, all of them when status is empty.
func (s *Service) List(ctx context.Context, status models.InboundStatus) ([]models.PendingInboundOrder, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
	}
	orders, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list inbound orders: %w", err)
	}
	return orders, nil
}

// Get loads one order.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.PendingInboundOrder, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new order awaiting pickup unless another status is given.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.PendingInboundOrder, error) {
	operation := strings.TrimSpace(in.OperationNumber)
	if operation == "" {
		return nil, fmt.Errorf("%w: operation number is required", models.ErrInvalidInput)
	}
	if in.ExpectedArrivalDate.IsZero() {
		return nil, fmt.Errorf("%w: expected arrival date is required", models.ErrInvalidInput)
	}

	status := in.Status
	if status == "" {
		status = models.InboundAwaitingPickup
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, status)
	}

	quantity := 1
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be positive", models.ErrInvalidInput)
		}
		quantity = *in.Quantity
	}

	now := s.now().UTC()
	order := &models.PendingInboundOrder{
		OperationNumber:     operation,
		ExpectedArrivalDate: in.ExpectedArrivalDate.UTC(),
		Status:              status,
		Quantity:            quantity,
		Description:         in.Description,
		ContactPerson:       in.ContactPerson,
		ContactPhone:        in.ContactPhone,
		Remarks:             in.Remarks,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("inbound order created",
		zap.String("order_id", order.ID.Hex()),
		zap.String("operation_number", order.OperationNumber),
	)
	return order, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*models.PendingInboundOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.OperationNumber != nil {
		operation := strings.TrimSpace(*in.OperationNumber)
		if operation == "" {
			return nil, fmt.Errorf("%w: operation number must not be empty", models.ErrInvalidInput)
		}
		order.OperationNumber = operation
	}
	if in.ExpectedArrivalDate != nil {
		order.ExpectedArrivalDate = in.ExpectedArrivalDate.UTC()
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", models.ErrInvalidInput, *in.Status)
		}
		order.Status = *in.Status
	}
	if in.Quantity != nil {
		if *in.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be positive", models.ErrInvalidInput)
		}
		order.Quantity = *in.Quantity
	}
	if in.Description != nil {
		order.Description = *in.Description
	}
	if in.ContactPerson != nil {
		order.ContactPerson = *in.ContactPerson
	}
	if in.ContactPhone != nil {
		order.ContactPhone = *in.ContactPhone
	}
	if in.Remarks != nil {
		order.Remarks = *in.Remarks
	}
	order.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes an order.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, id)
}

// Complete marks the order received and links it to the shipment created
// for the cargo.
func (s *Service) Complete(ctx context.Context, id, shipmentID primitive.ObjectID) (*models.PendingInboundOrder, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.CompletedAt != nil {
		return nil, ErrAlreadyCompleted
	}

	if _, err := s.shipments.FindByID(ctx, shipmentID); err != nil {
		return nil, fmt.Errorf("shipment %s: %w", shipmentID.Hex(), err)
	}

	now := s.now().UTC()
	order.Status = models.InboundReceived
	order.CompletedAt = &now
	order.ShipmentID = &shipmentID
	order.UpdatedAt = now

	if err := s.repo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("inbound order completed",
		zap.String("order_id", order.ID.Hex()),
		zap.String("shipment_id", shipmentID.Hex()),
	)
	return order, nil
}
