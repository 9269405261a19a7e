package models

import "time"

// StorageFeeSnapshot is the daily storage aggregate persisted by the accrual job.
type StorageFeeSnapshot struct {
	Date              time.Time `bson:"date" json:"date"`
	InWarehouseCount  int       `bson:"in_warehouse_count" json:"inWarehouseCount"`
	OutboundCount     int       `bson:"outbound_count" json:"outboundCount"`
	InWarehouseCBM    float64   `bson:"in_warehouse_cbm" json:"inWarehouseCbm"`
	AccruedFee        float64   `bson:"accrued_fee" json:"accruedFee"`
	SettledFee        float64   `bson:"settled_fee" json:"settledFee"`
	ExtendedTierCount int       `bson:"extended_tier_count" json:"extendedTierCount"`
	CreatedAt         time.Time `bson:"created_at" json:"createdAt"`
}
