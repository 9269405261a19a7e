package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/service/inbound"
)

// InboundService is the pending inbound order use cases exposed over HTTP.
type InboundService interface {
	List(ctx context.Context, status models.InboundStatus) ([]models.PendingInboundOrder, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.PendingInboundOrder, error)
	Create(ctx context.Context, in inbound.CreateInput) (*models.PendingInboundOrder, error)
	Update(ctx context.Context, id primitive.ObjectID, in inbound.UpdateInput) (*models.PendingInboundOrder, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Complete(ctx context.Context, id, shipmentID primitive.ObjectID) (*models.PendingInboundOrder, error)
}

type createOrderRequest struct {
	OperationNumber     string `json:"operationNumber" binding:"required"`
	ExpectedArrivalDate string `json:"expectedArrivalDate" binding:"required"`
	Status              string `json:"status" binding:"omitempty,inbound_status"`
	Quantity            *int   `json:"quantity" binding:"omitempty,min=1"`
	Description         string `json:"description"`
	ContactPerson       string `json:"contactPerson"`
	ContactPhone        string `json:"contactPhone"`
	Remarks             string `json:"remarks"`
}

type updateOrderRequest struct {
	OperationNumber     *string `json:"operationNumber"`
	ExpectedArrivalDate string  `json:"expectedArrivalDate"`
	Status              *string `json:"status" binding:"omitempty,inbound_status"`
	Quantity            *int    `json:"quantity" binding:"omitempty,min=1"`
	Description         *string `json:"description"`
	ContactPerson       *string `json:"contactPerson"`
	ContactPhone        *string `json:"contactPhone"`
	Remarks             *string `json:"remarks"`
}

type completeOrderRequest struct {
	ShipmentID string `json:"shipmentId" binding:"required"`
}

// InboundHandler serves /api/pending-inbound-orders.
type InboundHandler struct {
	svc    InboundService
	logger *zap.Logger
}

// NewInboundHandler constructs the HTTP handler adapter.
func NewInboundHandler(svc InboundService, logger *zap.Logger) *InboundHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboundHandler{svc: svc, logger: logger}
}

// List returns orders, optionally filtered by the status query parameter.
func (h *InboundHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context(), models.InboundStatus(c.Query("status")))
	if err != nil {
		respondError(c, h.logger, "failed to list inbound orders", err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// Get returns one order.
func (h *InboundHandler) Get(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid order id", err)
		return
	}

	order, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, "failed to load inbound order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Create announces expected cargo.
func (h *InboundHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	arrival, err := parseTimestamp(req.ExpectedArrivalDate)
	if err != nil {
		respondError(c, h.logger, "invalid expected arrival date", err)
		return
	}

	order, err := h.svc.Create(c.Request.Context(), inbound.CreateInput{
		OperationNumber:     req.OperationNumber,
		ExpectedArrivalDate: arrival,
		Status:              models.InboundStatus(req.Status),
		Quantity:            req.Quantity,
		Description:         req.Description,
		ContactPerson:       req.ContactPerson,
		ContactPhone:        req.ContactPhone,
		Remarks:             req.Remarks,
	})
	if err != nil {
		respondError(c, h.logger, "failed to create inbound order", err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

// Update patches an order.
func (h *InboundHandler) Update(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid order id", err)
		return
	}

	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	arrival, err := parseOptionalTimestamp(req.ExpectedArrivalDate)
	if err != nil {
		respondError(c, h.logger, "invalid expected arrival date", err)
		return
	}

	in := inbound.UpdateInput{
		OperationNumber:     req.OperationNumber,
		ExpectedArrivalDate: arrival,
		Quantity:            req.Quantity,
		Description:         req.Description,
		ContactPerson:       req.ContactPerson,
		ContactPhone:        req.ContactPhone,
		Remarks:             req.Remarks,
	}
	if req.Status != nil {
		status := models.InboundStatus(*req.Status)
		in.Status = &status
	}

	order, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, "failed to update inbound order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete removes an order.
func (h *InboundHandler) Delete(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid order id", err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, "failed to delete inbound order", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "inbound order deleted"})
}

// Complete links the order to the shipment its cargo was received as.
func (h *InboundHandler) Complete(c *gin.Context) {
	id, err := parseObjectID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "invalid order id", err)
		return
	}

	var req completeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}
	shipmentID, err := parseObjectID(req.ShipmentID)
	if err != nil {
		respondError(c, h.logger, "invalid shipment id", err)
		return
	}

	order, err := h.svc.Complete(c.Request.Context(), id, shipmentID)
	if err != nil {
		respondError(c, h.logger, "failed to complete inbound order", err)
		return
	}
	c.JSON(http.StatusOK, order)
}
