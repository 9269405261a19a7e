package warehouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
	"github.com/mamadbah2/warehouse/internal/repository/mongodb"
)

var (
	// ErrOpenRecordExists is returned when a shipment is received twice
	// without leaving in between.
	ErrOpenRecordExists = errors.New("shipment already has an open warehouse record")
	// ErrRecordRequired is returned when an update names neither a record nor a shipment.
	ErrRecordRequired = errors.New("record id or shipment id is required")
)

const defaultOutboundRoute = "outbound"

// RecordRepository is the warehouse record persistence the service needs.
type RecordRepository interface {
	Create(ctx context.Context, record *models.WarehouseRecord) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.WarehouseRecord, error)
	FindOpenByShipment(ctx context.Context, shipmentID primitive.ObjectID) (*models.WarehouseRecord, error)
	List(ctx context.Context, filter mongodb.RecordFilter) ([]models.WarehouseRecord, error)
	Update(ctx context.Context, record *models.WarehouseRecord) error
	UpdateStorageDays(ctx context.Context, id primitive.ObjectID, days int, at time.Time) error
}

// ShipmentRepository is the shipment persistence the service needs.
type ShipmentRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Shipment, error)
	Update(ctx context.Context, shipment *models.Shipment) error
}

// FeeRecorder receives fee computation events.
type FeeRecorder interface {
	RecordFeeComputed(source string)
	RecordOutboundFee(fee float64)
}

// TariffOverride holds the tariff fields a caller chose to set.
type TariffOverride struct {
	FreeDays          *int
	StandardRate      *float64
	ExtendedRate      *float64
	StandardDaysLimit *int
}

// Empty reports whether no field is set.
func (o TariffOverride) Empty() bool {
	return o.FreeDays == nil && o.StandardRate == nil && o.ExtendedRate == nil && o.StandardDaysLimit == nil
}

// Apply returns base with the set fields replaced.
func (o TariffOverride) Apply(base storagefee.TariffConfig) storagefee.TariffConfig {
	if o.FreeDays != nil {
		base.FreeDays = *o.FreeDays
	}
	if o.StandardRate != nil {
		base.StandardRate = *o.StandardRate
	}
	if o.ExtendedRate != nil {
		base.ExtendedRate = *o.ExtendedRate
	}
	if o.StandardDaysLimit != nil {
		base.StandardDaysLimit = *o.StandardDaysLimit
	}
	return base
}

// InboundInput receives a shipment into the warehouse.
type InboundInput struct {
	ShipmentID  primitive.ObjectID
	InboundDate *time.Time
	Tariff      TariffOverride
}

// UpdateInput locates a record by RecordID, or by the open record of
// ShipmentID, and applies the set fields. A set OutboundDate ships the
// cargo out.
type UpdateInput struct {
	RecordID     *primitive.ObjectID
	ShipmentID   *primitive.ObjectID
	InboundDate  *time.Time
	OutboundDate *time.Time
	Status       *models.RecordStatus
	StorageFee   *float64
	Route        *string
	Tariff       TariffOverride
}

// FeeView is the live fee of one record.
type FeeView struct {
	Record      models.WarehouseRecord  `json:"record"`
	StorageDays int                     `json:"storageDays"`
	Breakdown   storagefee.FeeBreakdown `json:"breakdown"`
	Tiers       []storagefee.TierLine   `json:"tiers"`
	TotalFee    string                  `json:"totalFeeDisplay"`
}

// Service runs the inbound and outbound workflow of warehouse records.
type Service struct {
	records   RecordRepository
	shipments ShipmentRepository
	calc      *storagefee.Calculator
	tariff    storagefee.TariffConfig
	recorder  FeeRecorder
	logger    *zap.Logger
}

// NewService wires a warehouse service. tariff is applied to records
// created without an explicit one.
func NewService(records RecordRepository, shipments ShipmentRepository, calc *storagefee.Calculator, tariff storagefee.TariffConfig, recorder FeeRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = storagefee.NewCalculator(false)
	}
	return &Service{
		records:   records,
		shipments: shipments,
		calc:      calc,
		tariff:    tariff,
		recorder:  recorder,
		logger:    logger,
	}
}

func (s *Service) now() time.Time {
	return s.calc.End(nil).UTC()
}

// List returns the records of one shipment, or all records, with their
// shipment attached, ordered by inbound date.
func (s *Service) List(ctx context.Context, shipmentID *primitive.ObjectID) ([]models.WarehouseRecord, error) {
	records, err := s.records.List(ctx, mongodb.RecordFilter{ShipmentID: shipmentID})
	if err != nil {
		return nil, fmt.Errorf("list warehouse records: %w", err)
	}
	if err := s.attachShipments(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) attachShipments(ctx context.Context, records []models.WarehouseRecord) error {
	if len(records) == 0 {
		return nil
	}

	seen := make(map[primitive.ObjectID]struct{}, len(records))
	ids := make([]primitive.ObjectID, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ShipmentID]; ok {
			continue
		}
		seen[r.ShipmentID] = struct{}{}
		ids = append(ids, r.ShipmentID)
	}

	shipments, err := s.shipments.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("load shipments of records: %w", err)
	}

	byID := make(map[primitive.ObjectID]*models.Shipment, len(shipments))
	for i := range shipments {
		byID[shipments[i].ID] = &shipments[i]
	}
	for i := range records {
		records[i].Shipment = byID[records[i].ShipmentID]
	}
	return nil
}

// Inbound opens a record for a shipment arriving at the warehouse.
func (s *Service) Inbound(ctx context.Context, in InboundInput) (*models.WarehouseRecord, error) {
	shipment, err := s.shipments.FindByID(ctx, in.ShipmentID)
	if err != nil {
		return nil, fmt.Errorf("shipment %s: %w", in.ShipmentID.Hex(), err)
	}

	existing, err := s.records.FindOpenByShipment(ctx, in.ShipmentID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: record %s", ErrOpenRecordExists, existing.ID.Hex())
	case !errors.Is(err, models.ErrNotFound):
		return nil, err
	}

	tariff := in.Tariff.Apply(s.tariff)
	if err := tariff.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	inbound := now
	if in.InboundDate != nil {
		inbound = in.InboundDate.UTC()
	}

	record := &models.WarehouseRecord{
		ShipmentID:  shipment.ID,
		InboundDate: inbound,
		Status:      models.RecordInWarehouse,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	record.ApplyTariff(tariff)

	if err := s.records.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("shipment received",
		zap.String("record_id", record.ID.Hex()),
		zap.String("shipment_id", shipment.ID.Hex()),
		zap.Time("inbound_date", record.InboundDate),
	)
	record.Shipment = shipment
	return record, nil
}

// Update edits a record; see UpdateInput. When the record is looked up by
// shipment and none is open, one is created from the shipment's creation
// time. A new record is only persisted once every edit has been accepted.
func (s *Service) Update(ctx context.Context, in UpdateInput) (*models.WarehouseRecord, error) {
	record, shipment, created, err := s.locate(ctx, in)
	if err != nil {
		return nil, err
	}

	tariff := in.Tariff.Apply(record.Tariff())
	if !in.Tariff.Empty() {
		if err := tariff.Validate(); err != nil {
			return nil, err
		}
		record.ApplyTariff(tariff)
	}

	if in.InboundDate != nil {
		inbound := in.InboundDate.UTC()
		if err := s.calc.CheckInterval(inbound, record.OutboundDate); err != nil {
			return nil, err
		}
		record.InboundDate = inbound
		days := s.calc.StorageDays(inbound, record.OutboundDate)
		record.StorageDays = &days
	}

	if in.OutboundDate != nil {
		shipment, err = s.ship(ctx, record, shipment, in)
		if err != nil {
			return nil, err
		}
	}

	if in.Status != nil {
		record.Status = *in.Status
	}
	record.UpdatedAt = s.now()

	if created {
		if err := s.records.Create(ctx, record); err != nil {
			return nil, err
		}
		s.logger.Warn("no open record for shipment, created one",
			zap.String("shipment_id", record.ShipmentID.Hex()),
			zap.String("record_id", record.ID.Hex()),
		)
	} else if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}

	if in.OutboundDate != nil && shipment != nil {
		route := defaultOutboundRoute
		if in.Route != nil && *in.Route != "" {
			route = *in.Route
		}
		shipment.Route = route
		shipment.UpdatedAt = record.UpdatedAt
		if err := s.shipments.Update(ctx, shipment); err != nil {
			return nil, fmt.Errorf("mark shipment %s outbound: %w", shipment.ID.Hex(), err)
		}
	}

	record.Shipment = shipment
	return record, nil
}

// locate finds the record an update targets. The bool reports a record built
// for a shipment without an open one; it is not stored yet.
func (s *Service) locate(ctx context.Context, in UpdateInput) (*models.WarehouseRecord, *models.Shipment, bool, error) {
	switch {
	case in.RecordID != nil:
		record, err := s.records.FindByID(ctx, *in.RecordID)
		if err != nil {
			return nil, nil, false, fmt.Errorf("warehouse record %s: %w", in.RecordID.Hex(), err)
		}
		return record, nil, false, nil

	case in.ShipmentID != nil:
		record, err := s.records.FindOpenByShipment(ctx, *in.ShipmentID)
		if err == nil {
			return record, nil, false, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, nil, false, err
		}

		shipment, err := s.shipments.FindByID(ctx, *in.ShipmentID)
		if err != nil {
			return nil, nil, false, fmt.Errorf("shipment %s: %w", in.ShipmentID.Hex(), err)
		}

		inbound := shipment.CreatedAt
		if in.InboundDate != nil {
			inbound = in.InboundDate.UTC()
		}
		now := s.now()
		record = &models.WarehouseRecord{
			ShipmentID:  shipment.ID,
			InboundDate: inbound,
			Status:      models.RecordInWarehouse,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		record.ApplyTariff(s.tariff)
		return record, shipment, true, nil

	default:
		return nil, nil, false, ErrRecordRequired
	}
}

// ship closes the record and settles its fee. An explicit fee wins; a fee
// already stored is kept; otherwise it is computed from the shipment CBM.
func (s *Service) ship(ctx context.Context, record *models.WarehouseRecord, shipment *models.Shipment, in UpdateInput) (*models.Shipment, error) {
	outbound := in.OutboundDate.UTC()
	if err := s.calc.CheckInterval(record.InboundDate, &outbound); err != nil {
		return nil, err
	}

	if shipment == nil {
		found, err := s.shipments.FindByID(ctx, record.ShipmentID)
		switch {
		case err == nil:
			shipment = found
		case errors.Is(err, models.ErrNotFound):
			s.logger.Warn("shipment of record is missing", zap.String("record_id", record.ID.Hex()))
		default:
			return nil, fmt.Errorf("shipment %s: %w", record.ShipmentID.Hex(), err)
		}
	}

	record.OutboundDate = &outbound
	record.Status = models.RecordOutOfWarehouse
	days := s.calc.StorageDays(record.InboundDate, &outbound)
	record.StorageDays = &days

	switch {
	case in.StorageFee != nil:
		fee := storagefee.Round2(*in.StorageFee)
		record.StorageFee = &fee
	case record.StorageFee == nil && shipment != nil && shipment.CBM > 0:
		breakdown := storagefee.ComputeStorageFee(shipment.CBM, days, record.Tariff())
		fee := storagefee.Round2(breakdown.TotalFee)
		record.StorageFee = &fee
		if s.recorder != nil {
			s.recorder.RecordFeeComputed("outbound")
		}
	}

	if record.StorageFee != nil && s.recorder != nil {
		s.recorder.RecordOutboundFee(*record.StorageFee)
	}

	fields := []zap.Field{
		zap.String("shipment_id", record.ShipmentID.Hex()),
		zap.Int("storage_days", days),
	}
	if record.StorageFee != nil {
		fields = append(fields, zap.Float64("storage_fee", *record.StorageFee))
	}
	s.logger.Info("shipment left the warehouse", fields...)
	return shipment, nil
}

// Fee prices one record as of now, or as of its outbound date.
func (s *Service) Fee(ctx context.Context, id primitive.ObjectID) (*FeeView, error) {
	record, err := s.records.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("warehouse record %s: %w", id.Hex(), err)
	}

	var cbm float64
	shipment, err := s.shipments.FindByID(ctx, record.ShipmentID)
	switch {
	case err == nil:
		cbm = shipment.CBM
		record.Shipment = shipment
	case !errors.Is(err, models.ErrNotFound):
		return nil, fmt.Errorf("shipment %s: %w", record.ShipmentID.Hex(), err)
	}

	tariff := record.Tariff()
	breakdown, err := s.calc.FeeForInterval(storagefee.StorageInterval{
		InboundDate:  record.InboundDate,
		OutboundDate: record.OutboundDate,
		VolumeCBM:    cbm,
	}, tariff)
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordFeeComputed("record")
	}

	return &FeeView{
		Record:      *record,
		StorageDays: breakdown.Details.TotalDays,
		Breakdown:   breakdown,
		Tiers:       storagefee.DescribeTiers(breakdown, tariff),
		TotalFee:    storagefee.FormatCurrency(breakdown.TotalFee),
	}, nil
}

// RefreshOpenRecords stores the running day count of every record still in
// the warehouse and returns the refreshed records. A failing record is
// logged and skipped.
func (s *Service) RefreshOpenRecords(ctx context.Context) ([]models.WarehouseRecord, error) {
	records, err := s.records.List(ctx, mongodb.RecordFilter{OpenOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list open records: %w", err)
	}

	now := s.now()
	refreshed := make([]models.WarehouseRecord, 0, len(records))
	for _, record := range records {
		days := s.calc.StorageDays(record.InboundDate, nil)
		if err := s.records.UpdateStorageDays(ctx, record.ID, days, now); err != nil {
			s.logger.Error("failed to refresh storage days",
				zap.String("record_id", record.ID.Hex()),
				zap.Error(err),
			)
			continue
		}
		record.StorageDays = &days
		record.UpdatedAt = now
		refreshed = append(refreshed, record)
	}

	s.logger.Info("open records refreshed",
		zap.Int("open", len(records)),
		zap.Int("refreshed", len(refreshed)),
	)
	return refreshed, nil
}
