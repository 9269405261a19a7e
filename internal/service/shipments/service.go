package shipments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
)

// Repository is the persistence the shipment service needs.
type Repository interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error)
	List(ctx context.Context) ([]models.Shipment, error)
	Update(ctx context.Context, shipment *models.Shipment) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CreateInput carries the fields of a new shipment. A missing shipment
// number is generated, a missing CBM is derived from the dimensions.
type CreateInput struct {
	ShipmentNumber    string
	OperationNumber   string
	MaterialTypeCode  string
	Quantity          *int
	ActualWeight      float64
	Length            float64
	Width             float64
	Height            float64
	MaterialWeight    float64
	Perimeter         *float64
	CBM               *float64
	MinWeightPerPiece *float64
	TotalWeight       float64
	Destination       string
	Route             string
	Remarks           string
}

// UpdateInput is a partial update; nil fields are left untouched.
type UpdateInput struct {
	OperationNumber   *string
	MaterialTypeCode  *string
	Quantity          *int
	ActualWeight      *float64
	Length            *float64
	Width             *float64
	Height            *float64
	MaterialWeight    *float64
	Perimeter         *float64
	CBM               *float64
	MinWeightPerPiece *float64
	TotalWeight       *float64
	Destination       *string
	Route             *string
	Remarks           *string
}

// Service manages shipments.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a shipment service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// List returns every shipment ordered by creation time.
func (s *Service) List(ctx context.Context) ([]models.Shipment, error) {
	shipments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shipments: %w", err)
	}
	return shipments, nil
}

// Get loads one shipment.
func (s *Service) Get(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error) {
	return s.repo.FindByID(ctx, id)
}

// Create stores a new shipment.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Shipment, error) {
	operation := strings.TrimSpace(in.OperationNumber)
	if operation == "" {
		return nil, fmt.Errorf("%w: operation number is required", models.ErrInvalidInput)
	}

	now := s.now().UTC()
	number := strings.TrimSpace(in.ShipmentNumber)
	if number == "" {
		number = fmt.Sprintf("S%d", now.UnixMilli())
	}

	quantity := 1
	if in.Quantity != nil {
		quantity = *in.Quantity
	}

	cbm := storagefee.CalculateCBM(in.Length, in.Width, in.Height)
	if in.CBM != nil {
		cbm = *in.CBM
	}

	shipment := &models.Shipment{
		ShipmentNumber:    number,
		OperationNumber:   operation,
		MaterialTypeCode:  in.MaterialTypeCode,
		Quantity:          quantity,
		ActualWeight:      in.ActualWeight,
		Length:            in.Length,
		Width:             in.Width,
		Height:            in.Height,
		MaterialWeight:    in.MaterialWeight,
		Perimeter:         in.Perimeter,
		CBM:               cbm,
		MinWeightPerPiece: in.MinWeightPerPiece,
		TotalWeight:       in.TotalWeight,
		Destination:       in.Destination,
		Route:             in.Route,
		Remarks:           in.Remarks,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	s.logger.Info("shipment created",
		zap.String("shipment_id", shipment.ID.Hex()),
		zap.String("shipment_number", shipment.ShipmentNumber),
		zap.Float64("cbm", shipment.CBM),
	)
	return shipment, nil
}

// Update applies a partial update. Changing a dimension without an explicit
// CBM recomputes the CBM.
func (s *Service) Update(ctx context.Context, id primitive.ObjectID, in UpdateInput) (*models.Shipment, error) {
	shipment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.OperationNumber != nil {
		if strings.TrimSpace(*in.OperationNumber) == "" {
			return nil, fmt.Errorf("%w: operation number must not be empty", models.ErrInvalidInput)
		}
		shipment.OperationNumber = strings.TrimSpace(*in.OperationNumber)
	}
	setString(&shipment.MaterialTypeCode, in.MaterialTypeCode)
	if in.Quantity != nil {
		shipment.Quantity = *in.Quantity
	}
	setFloat(&shipment.ActualWeight, in.ActualWeight)
	setFloat(&shipment.MaterialWeight, in.MaterialWeight)
	setFloat(&shipment.TotalWeight, in.TotalWeight)

	resized := in.Length != nil || in.Width != nil || in.Height != nil
	setFloat(&shipment.Length, in.Length)
	setFloat(&shipment.Width, in.Width)
	setFloat(&shipment.Height, in.Height)
	switch {
	case in.CBM != nil:
		shipment.CBM = *in.CBM
	case resized:
		shipment.CBM = storagefee.CalculateCBM(shipment.Length, shipment.Width, shipment.Height)
	}

	if in.Perimeter != nil {
		shipment.Perimeter = in.Perimeter
	}
	if in.MinWeightPerPiece != nil {
		shipment.MinWeightPerPiece = in.MinWeightPerPiece
	}
	setString(&shipment.Destination, in.Destination)
	setString(&shipment.Route, in.Route)
	setString(&shipment.Remarks, in.Remarks)
	shipment.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// Delete removes a shipment.
func (s *Service) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("shipment deleted", zap.String("shipment_id", id.Hex()))
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
