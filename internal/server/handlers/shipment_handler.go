package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/service/shipments"
)

// ShipmentService is the shipment use cases exposed over HTTP.
type ShipmentService interface {
	List(ctx context.Context) ([]models.Shipment, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Shipment, error)
	Create(ctx context.Context, in shipments.CreateInput) (*models.Shipment, error)
	Update(ctx context.Context, id primitive.ObjectID, in shipments.UpdateInput) (*models.Shipment, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type createShipmentRequest struct {
	ShipmentNumber    string   `json:"shipmentNumber"`
	OperationNumber   string   `json:"operationNumber" binding:"required"`
	MaterialTypeCode  string   `json:"materialTypeCode"`
	Quantity          *int     `json:"quantity" binding:"omitempty,min=1"`
	ActualWeight      float64  `json:"actualWeight" binding:"gte=0"`
	Length            float64  `json:"length" binding:"gte=0"`
	Width             float64  `json:"width" binding:"gte=0"`
	Height            float64  `json:"height" binding:"gte=0"`
	MaterialWeight    float64  `json:"materialWeight" binding:"gte=0"`
	Perimeter         *float64 `json:"perimeter"`
	CBM               *float64 `json:"cbm" binding:"omitempty,gte=0"`
	MinWeightPerPiece *float64 `json:"minWeightPerPiece"`
	TotalWeight       float64  `json:"totalWeight" binding:"gte=0"`
	Destination       string   `json:"destination"`
	Route             string   `json:"route"`
	Remarks           string   `json:"remarks"`
}

func (r createShipmentRequest) input() shipments.CreateInput {
	return shipments.CreateInput{
		ShipmentNumber:    r.ShipmentNumber,
		OperationNumber:   r.OperationNumber,
		MaterialTypeCode:  r.MaterialTypeCode,
		Quantity:          r.Quantity,
		ActualWeight:      r.ActualWeight,
		Length:            r.Length,
		Width:             r.Width,
		Height:            r.Height,
		MaterialWeight:    r.MaterialWeight,
		Perimeter:         r.Perimeter,
		CBM:               r.CBM,
		MinWeightPerPiece: r.MinWeightPerPiece,
		TotalWeight:       r.TotalWeight,
		Destination:       r.Destination,
		Route:             r.Route,
		Remarks:           r.Remarks,
	}
}

type updateShipmentRequest struct {
	OperationNumber   *string  `json:"operationNumber"`
	MaterialTypeCode  *string  `json:"materialTypeCode"`
	Quantity          *int     `json:"quantity" binding:"omitempty,min=1"`
	ActualWeight      *float64 `json:"actualWeight" binding:"omitempty,gte=0"`
	Length            *float64 `json:"length" binding:"omitempty,gte=0"`
	Width             *float64 `json:"width" binding:"omitempty,gte=0"`
	Height            *float64 `json:"height" binding:"omitempty,gte=0"`
	MaterialWeight    *float64 `json:"materialWeight" binding:"omitempty,gte=0"`
	Perimeter         *float64 `json:"perimeter"`
	CBM               *float64 `json:"cbm" binding:"omitempty,gte=0"`
	MinWeightPerPiece *float64 `json:"minWeightPerPiece"`
	TotalWeight       *float64 `json:"totalWeight" binding:"omitempty,gte=0"`
	Destination       *string  `json:"destination"`
	Route             *string  `json:"route"`
	Remarks           *string  `json:"remarks"`
}

func (r updateShipmentRequest) input() shipments.UpdateInput {
	return shipments.UpdateInput{
		OperationNumber:   r.OperationNumber,
		MaterialTypeCode:  r.MaterialTypeCode,
		Quantity:          r.Quantity,
		ActualWeight:      r.ActualWeight,
		Length:            r.Length,
		Width:             r.Width,
		Height:            r.Height,
		MaterialWeight:    r.MaterialWeight,
		Perimeter:         r.Perimeter,
		CBM:               r.CBM,
		MinWeightPerPiece: r.MinWeightPerPiece,
		TotalWeight:       r.TotalWeight,
		Destination:       r.Destination,
		Route:             r.Route,
		Remarks:           r.Remarks,
	}
}

// ShipmentHandler serves /api/shipments.
type ShipmentHandler struct {
	svc    ShipmentService
	logger *zap.Logger
}

// NewShipmentHandler constructs the HTTP handler adapter.
func NewShipmentHandler(svc ShipmentService, logger *zap.Logger) *ShipmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentHandler{svc: svc, logger: logger}
}

// List returns every shipment.
func (h *ShipmentHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "failed to list shipments", err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Get returns one shipment.
func (h *ShipmentHandler) Get(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}

	shipment, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "failed to load shipment", err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// Create registers a shipment.
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req createShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	shipment, err := h.svc.Create(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, h.logger, "failed to create shipment", err)
		return
	}
	c.JSON(http.StatusCreated, shipment)
}

// Update patches a shipment.
func (h *ShipmentHandler) Update(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}

	var req updateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	shipment, err := h.svc.Update(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, h.logger, "failed to update shipment", err)
		return
	}
	c.JSON(http.StatusOK, shipment)
}

// Delete removes a shipment.
func (h *ShipmentHandler) Delete(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "failed to delete shipment", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "shipment deleted"})
}
