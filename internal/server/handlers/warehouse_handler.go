package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/service/warehouse"
)

// WarehouseService is the warehouse record use cases exposed over HTTP.
type WarehouseService interface {
	List(ctx context.Context, shipmentID *primitive.ObjectID) ([]models.WarehouseRecord, error)
	Inbound(ctx context.Context, in warehouse.InboundInput) (*models.WarehouseRecord, error)
	Update(ctx context.Context, in warehouse.UpdateInput) (*models.WarehouseRecord, error)
	Fee(ctx context.Context, id primitive.ObjectID) (*warehouse.FeeView, error)
}

type inboundRequest struct {
	ShipmentID  string `json:"shipmentId" binding:"required"`
	InboundDate string `json:"inboundDate"`
	tariffFields
}

type updateRecordRequest struct {
	ID           string   `json:"id"`
	ShipmentID   string   `json:"shipmentId"`
	InboundDate  string   `json:"inboundDate"`
	OutboundDate string   `json:"outboundDate"`
	Status       string   `json:"status" binding:"omitempty,record_status"`
	StorageFee   *float64 `json:"storageFee" binding:"omitempty,gte=0"`
	Route        *string  `json:"route"`
	tariffFields
}

// WarehouseHandler serves /api/warehouse-records.
type WarehouseHandler struct {
	svc    WarehouseService
	logger *zap.Logger
}

// NewWarehouseHandler constructs the HTTP handler adapter.
func NewWarehouseHandler(svc WarehouseService, logger *zap.Logger) *WarehouseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseHandler{svc: svc, logger: logger}
}

// List returns records, optionally of one shipment.
func (h *WarehouseHandler) List(c *gin.Context) {
	shipmentID, err := parseOptionalObjectID(c.Query("shipmentId"))
	if err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}

	records, err := h.svc.List(c.Request.Context(), shipmentID)
	if err != nil {
		respondError(c, h.logger, "failed to list warehouse records", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Inbound receives a shipment into the warehouse.
func (h *WarehouseHandler) Inbound(c *gin.Context) {
	var req inboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	shipmentID, err := parseObjectID(req.ShipmentID)
	if err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}
	inboundDate, err := parseOptionalTimestamp(req.InboundDate)
	if err != nil {
		respondError(c, h.logger, "invalid inbound date", err)
		return
	}

	record, err := h.svc.Inbound(c.Request.Context(), warehouse.InboundInput{
		ShipmentID:  shipmentID,
		InboundDate: inboundDate,
		Tariff:      req.override(),
	})
	if err != nil {
		respondError(c, h.logger, "failed to create warehouse record", err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// Update edits a record; it ships the cargo out when an outbound date is given.
func (h *WarehouseHandler) Update(c *gin.Context) {
	var req updateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	in := warehouse.UpdateInput{
		StorageFee: req.StorageFee,
		Route:      req.Route,
		Tariff:     req.override(),
	}

	var err error
	if in.RecordID, err = parseOptionalObjectID(req.ID); err != nil {
		respondError(c, h.logger, "invalid record id", err)
		return
	}
	if in.ShipmentID, err = parseOptionalObjectID(req.ShipmentID); err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}
	if in.InboundDate, err = parseOptionalTimestamp(req.InboundDate); err != nil {
		respondError(c, h.logger, "invalid inbound date", err)
		return
	}
	if in.OutboundDate, err = parseOptionalTimestamp(req.OutboundDate); err != nil {
		respondError(c, h.logger, "invalid outbound date", err)
		return
	}
	if req.Status != "" {
		status := models.RecordStatus(req.Status)
		in.Status = &status
	}

	record, err := h.svc.Update(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, "failed to update warehouse record", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Fee returns the live fee breakdown of a record.
func (h *WarehouseHandler) Fee(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid record id", err)
		return
	}

	view, err := h.svc.Fee(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "failed to compute storage fee", err)
		return
	}
	c.JSON(http.StatusOK, view)
}
