package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
)

// RecordStatus tracks whether a shipment is still stored.
type RecordStatus string

const (
	RecordInWarehouse    RecordStatus = "in_warehouse"
	RecordOutOfWarehouse RecordStatus = "out_of_warehouse"
)

// WarehouseRecord is one stay of a shipment, from inbound to outbound, along
// with the tariff it is billed under.
type WarehouseRecord struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentID        primitive.ObjectID `bson:"shipment_id" json:"shipmentId"`
	InboundDate       time.Time          `bson:"inbound_date" json:"inboundDate"`
	OutboundDate      *time.Time         `bson:"outbound_date,omitempty" json:"outboundDate,omitempty"`
	Status            RecordStatus       `bson:"status" json:"status"`
	StorageDays       *int               `bson:"storage_days,omitempty" json:"storageDays,omitempty"`
	StorageFee        *float64           `bson:"storage_fee,omitempty" json:"storageFee,omitempty"`
	FreeDays          int                `bson:"free_days" json:"freeDays"`
	StandardRate      float64            `bson:"standard_rate" json:"standardRate"`
	ExtendedRate      float64            `bson:"extended_rate" json:"extendedRate"`
	StandardDaysLimit int                `bson:"standard_days_limit" json:"standardDaysLimit"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`

	Shipment *Shipment `bson:"-" json:"shipment,omitempty"`
}

// Tariff returns the tariff the record is billed under.
func (r WarehouseRecord) Tariff() storagefee.TariffConfig {
	return storagefee.TariffConfig{
		FreeDays:          r.FreeDays,
		StandardRate:      r.StandardRate,
		ExtendedRate:      r.ExtendedRate,
		StandardDaysLimit: r.StandardDaysLimit,
	}
}

// ApplyTariff copies cfg onto the record.
func (r *WarehouseRecord) ApplyTariff(cfg storagefee.TariffConfig) {
	r.FreeDays = cfg.FreeDays
	r.StandardRate = cfg.StandardRate
	r.ExtendedRate = cfg.ExtendedRate
	r.StandardDaysLimit = cfg.StandardDaysLimit
}

// IsOpen reports whether the shipment has not left the warehouse yet.
func (r WarehouseRecord) IsOpen() bool {
	return r.OutboundDate == nil
}
