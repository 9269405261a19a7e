package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InboundStatus is the pickup progress of a pending inbound order.
type InboundStatus string

const (
	InboundAwaitingPickup InboundStatus = "awaiting_pickup"
	InboundPickingUp      InboundStatus = "picking_up"
	InboundDelivered      InboundStatus = "delivered_to_warehouse"
	InboundReceived       InboundStatus = "received"
)

// Valid reports whether s is a known status.
func (s InboundStatus) Valid() bool {
	switch s {
	case InboundAwaitingPickup, InboundPickingUp, InboundDelivered, InboundReceived:
		return true
	}
	return false
}

// PendingInboundOrder announces cargo expected at the warehouse. It is
// completed once the cargo has been received as a Shipment.
type PendingInboundOrder struct {
	ID                  primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OperationNumber     string              `bson:"operation_number" json:"operationNumber"`
	ExpectedArrivalDate time.Time           `bson:"expected_arrival_date" json:"expectedArrivalDate"`
	Status              InboundStatus       `bson:"status" json:"status"`
	Quantity            int                 `bson:"quantity" json:"quantity"`
	Description         string              `bson:"description,omitempty" json:"description,omitempty"`
	ContactPerson       string              `bson:"contact_person,omitempty" json:"contactPerson,omitempty"`
	ContactPhone        string              `bson:"contact_phone,omitempty" json:"contactPhone,omitempty"`
	Remarks             string              `bson:"remarks,omitempty" json:"remarks,omitempty"`
	CompletedAt         *time.Time          `bson:"completed_at,omitempty" json:"completedAt,omitempty"`
	ShipmentID          *primitive.ObjectID `bson:"shipment_id,omitempty" json:"shipmentId,omitempty"`
	CreatedAt           time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt           time.Time           `bson:"updated_at" json:"updatedAt"`
}
