package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shipment is a physical consignment received into the warehouse.
// Dimensions are in centimeters, weights in kilograms and CBM in cubic meters.
type Shipment struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ShipmentNumber    string             `bson:"shipment_number" json:"shipmentNumber"`
	OperationNumber   string             `bson:"operation_number" json:"operationNumber"`
	MaterialTypeCode  string             `bson:"material_type_code,omitempty" json:"materialTypeCode,omitempty"`
	Quantity          int                `bson:"quantity" json:"quantity"`
	ActualWeight      float64            `bson:"actual_weight" json:"actualWeight"`
	Length            float64            `bson:"length" json:"length"`
	Width             float64            `bson:"width" json:"width"`
	Height            float64            `bson:"height" json:"height"`
	MaterialWeight    float64            `bson:"material_weight" json:"materialWeight"`
	Perimeter         *float64           `bson:"perimeter,omitempty" json:"perimeter,omitempty"`
	CBM               float64            `bson:"cbm" json:"cbm"`
	MinWeightPerPiece *float64           `bson:"min_weight_per_piece,omitempty" json:"minWeightPerPiece,omitempty"`
	TotalWeight       float64            `bson:"total_weight" json:"totalWeight"`
	Destination       string             `bson:"destination,omitempty" json:"destination,omitempty"`
	Route             string             `bson:"route,omitempty" json:"route,omitempty"`
	Remarks           string             `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CreatedAt         time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updatedAt"`
}
