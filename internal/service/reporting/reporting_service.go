package reporting

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
	"github.com/mamadbah2/warehouse/internal/repository/mongodb"
	repo "github.com/mamadbah2/warehouse/internal/repository/sheets"
)

const (
	dateLayout         = "2006-01-02"
	snapshotsDataRange = "Snapshots!A:H"
)

// ErrExportDisabled is returned by ExportSnapshot when no spreadsheet is configured.
var ErrExportDisabled = errors.New("sheets export is not configured")

// RecordLister reads warehouse records.
type RecordLister interface {
	List(ctx context.Context, filter mongodb.RecordFilter) ([]models.WarehouseRecord, error)
}

// ShipmentLister resolves the shipments of records.
type ShipmentLister interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Shipment, error)
}

// SnapshotStore persists daily snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.StorageFeeSnapshot) error
	Recent(ctx context.Context, limit int64) ([]models.StorageFeeSnapshot, error)
}

// Query selects the records of a report. RangeDays keeps records received
// within the last RangeDays calendar days; 0 keeps all of them.
type Query struct {
	RangeDays int
}

// Line is the fee of one warehouse record.
type Line struct {
	RecordID        primitive.ObjectID      `json:"recordId"`
	ShipmentID      primitive.ObjectID      `json:"shipmentId"`
	ShipmentNumber  string                  `json:"shipmentNumber"`
	OperationNumber string                  `json:"operationNumber"`
	Destination     string                  `json:"destination,omitempty"`
	InboundDate     time.Time               `json:"inboundDate"`
	OutboundDate    *time.Time              `json:"outboundDate,omitempty"`
	Status          models.RecordStatus     `json:"status"`
	CBM             float64                 `json:"cbm"`
	StorageDays     int                     `json:"storageDays"`
	Settled         bool                    `json:"settled"`
	Breakdown       storagefee.FeeBreakdown `json:"breakdown"`
	Tiers           []storagefee.TierLine   `json:"tiers"`
	StorageFee      float64                 `json:"storageFee"`
}

// OperationTotal sums the lines of one operation number.
type OperationTotal struct {
	OperationNumber string  `json:"operationNumber"`
	Shipments       int     `json:"shipments"`
	CBM             float64 `json:"cbm"`
	TotalFee        float64 `json:"totalFee"`
}

// Report is the storage fee statement over a set of records.
type Report struct {
	GeneratedAt     time.Time        `json:"generatedAt"`
	RangeDays       int              `json:"rangeDays"`
	Lines           []Line           `json:"lines"`
	Operations      []OperationTotal `json:"operations"`
	TotalFee        float64          `json:"totalFee"`
	TotalFeeDisplay string           `json:"totalFeeDisplay"`
}

// Service builds storage fee reports and the daily snapshot.
type Service struct {
	records   RecordLister
	shipments ShipmentLister
	snapshots SnapshotStore
	sheets    repo.Repository
	calc      *storagefee.Calculator
	loc       *time.Location
	logger    *zap.Logger
}

// NewService wires a new reporting service instance. sheets may be nil when
// the export is disabled; loc sets the day boundaries of snapshots.
func NewService(records RecordLister, shipments ShipmentLister, snapshots SnapshotStore, sheets repo.Repository, calc *storagefee.Calculator, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = storagefee.NewCalculator(false)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		records:   records,
		shipments: shipments,
		snapshots: snapshots,
		sheets:    sheets,
		calc:      calc,
		loc:       loc,
		logger:    logger,
	}
}

type pricedRecord struct {
	record   models.WarehouseRecord
	shipment *models.Shipment
	days     int
	fee      storagefee.FeeBreakdown
	settled  bool
}

// price loads every record and prices it. Closed records keep the days and
// fee settled at outbound, open ones are priced as of now.
func (s *Service) price(ctx context.Context) ([]pricedRecord, error) {
	records, err := s.records.List(ctx, mongodb.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("load warehouse records: %w", err)
	}

	ids := make([]primitive.ObjectID, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ShipmentID)
	}
	shipments, err := s.shipments.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load shipments: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.Shipment, len(shipments))
	for i := range shipments {
		byID[shipments[i].ID] = &shipments[i]
	}

	priced := make([]pricedRecord, 0, len(records))
	for _, r := range records {
		shipment := byID[r.ShipmentID]
		if shipment == nil {
			s.logger.Debug("skip record without shipment", zap.String("record_id", r.ID.Hex()))
			continue
		}

		days := s.calc.StorageDays(r.InboundDate, r.OutboundDate)
		if !r.IsOpen() && r.StorageDays != nil {
			days = *r.StorageDays
		}

		fee := storagefee.ComputeStorageFee(shipment.CBM, days, r.Tariff())
		settled := !r.IsOpen() && r.StorageFee != nil
		if settled {
			fee.TotalFee = *r.StorageFee
		}

		priced = append(priced, pricedRecord{record: r, shipment: shipment, days: days, fee: fee, settled: settled})
	}
	return priced, nil
}

// StorageFeeReport prices the records selected by q.
func (s *Service) StorageFeeReport(ctx context.Context, q Query) (*Report, error) {
	if q.RangeDays < 0 {
		return nil, fmt.Errorf("%w: range must not be negative", models.ErrInvalidInput)
	}

	priced, err := s.price(ctx)
	if err != nil {
		return nil, err
	}

	now := s.calc.End(nil)
	var cutoff time.Time
	if q.RangeDays > 0 {
		cutoff = startOfDay(now.AddDate(0, 0, -q.RangeDays), s.loc)
	}

	report := &Report{
		GeneratedAt: now.UTC(),
		RangeDays:   q.RangeDays,
		Lines:       make([]Line, 0, len(priced)),
		Operations:  []OperationTotal{},
	}
	operations := map[string]*OperationTotal{}

	for _, p := range priced {
		if !cutoff.IsZero() && p.record.InboundDate.Before(cutoff) {
			continue
		}

		line := Line{
			RecordID:        p.record.ID,
			ShipmentID:      p.shipment.ID,
			ShipmentNumber:  p.shipment.ShipmentNumber,
			OperationNumber: p.shipment.OperationNumber,
			Destination:     p.shipment.Destination,
			InboundDate:     p.record.InboundDate,
			OutboundDate:    p.record.OutboundDate,
			Status:          p.record.Status,
			CBM:             p.shipment.CBM,
			StorageDays:     p.days,
			Settled:         p.settled,
			Breakdown:       p.fee,
			Tiers:           storagefee.DescribeTiers(p.fee, p.record.Tariff()),
			StorageFee:      storagefee.Round2(p.fee.TotalFee),
		}
		report.Lines = append(report.Lines, line)
		report.TotalFee += p.fee.TotalFee

		op, ok := operations[line.OperationNumber]
		if !ok {
			op = &OperationTotal{OperationNumber: line.OperationNumber}
			operations[line.OperationNumber] = op
		}
		op.Shipments++
		op.CBM += line.CBM
		op.TotalFee += p.fee.TotalFee
	}

	for _, op := range operations {
		op.TotalFee = storagefee.Round2(op.TotalFee)
		report.Operations = append(report.Operations, *op)
	}
	sort.Slice(report.Operations, func(i, j int) bool {
		return report.Operations[i].OperationNumber < report.Operations[j].OperationNumber
	})

	report.TotalFee = storagefee.Round2(report.TotalFee)
	report.TotalFeeDisplay = storagefee.FormatCurrency(report.TotalFee)
	return report, nil
}

// BuildSnapshot aggregates the state of the warehouse for the current day.
func (s *Service) BuildSnapshot(ctx context.Context) (models.StorageFeeSnapshot, error) {
	priced, err := s.price(ctx)
	if err != nil {
		return models.StorageFeeSnapshot{}, err
	}

	now := s.calc.End(nil)
	day := startOfDay(now, s.loc)
	snapshot := models.StorageFeeSnapshot{
		Date:      day.UTC(),
		CreatedAt: now.UTC(),
	}

	var accrued, settled float64
	for _, p := range priced {
		if p.record.IsOpen() {
			snapshot.InWarehouseCount++
			snapshot.InWarehouseCBM += p.shipment.CBM
			accrued += p.fee.TotalFee
			if p.fee.ExtendedDays > 0 {
				snapshot.ExtendedTierCount++
			}
			continue
		}

		if startOfDay(*p.record.OutboundDate, s.loc).Equal(day) {
			snapshot.OutboundCount++
			settled += p.fee.TotalFee
		}
	}

	snapshot.InWarehouseCBM = storagefee.Round2(snapshot.InWarehouseCBM)
	snapshot.AccruedFee = storagefee.Round2(accrued)
	snapshot.SettledFee = storagefee.Round2(settled)
	return snapshot, nil
}

// SaveSnapshot persists the snapshot, replacing an earlier one of the same day.
func (s *Service) SaveSnapshot(ctx context.Context, snapshot models.StorageFeeSnapshot) error {
	return s.snapshots.SaveSnapshot(ctx, snapshot)
}

// RecentSnapshots returns up to limit snapshots, newest first.
func (s *Service) RecentSnapshots(ctx context.Context, limit int) ([]models.StorageFeeSnapshot, error) {
	return s.snapshots.Recent(ctx, int64(limit))
}

// ExportSnapshot appends the snapshot as one row of the Snapshots sheet.
func (s *Service) ExportSnapshot(ctx context.Context, snapshot models.StorageFeeSnapshot) error {
	if s.sheets == nil {
		return ErrExportDisabled
	}

	row := []interface{}{
		snapshot.Date.In(s.loc).Format(dateLayout),
		snapshot.InWarehouseCount,
		snapshot.OutboundCount,
		snapshot.InWarehouseCBM,
		snapshot.AccruedFee,
		snapshot.SettledFee,
		snapshot.ExtendedTierCount,
		snapshot.CreatedAt.Format(time.RFC3339),
	}
	if err := s.sheets.AppendRows(ctx, snapshotsDataRange, [][]interface{}{row}); err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	return nil
}

// Summary renders the snapshot as a short operator message.
func (s *Service) Summary(snapshot models.StorageFeeSnapshot) string {
	date := snapshot.Date.In(s.loc).Format(dateLayout)
	if snapshot.InWarehouseCount == 0 && snapshot.OutboundCount == 0 {
		return fmt.Sprintf("Storage fees (%s): warehouse is empty.", date)
	}

	msg := fmt.Sprintf("Storage fees (%s): %d shipments in warehouse (%.2f CBM), %s accrued, %d in the extended tier.",
		date,
		snapshot.InWarehouseCount,
		snapshot.InWarehouseCBM,
		storagefee.FormatCurrency(snapshot.AccruedFee),
		snapshot.ExtendedTierCount,
	)
	if snapshot.OutboundCount > 0 {
		msg += fmt.Sprintf(" %d left today, %s settled.", snapshot.OutboundCount, storagefee.FormatCurrency(snapshot.SettledFee))
	}
	return msg
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
