package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/server/handlers"
	"github.com/mamadbah2/warehouse/pkg/metrics"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Health     *handlers.HealthHandler
	Shipments  *handlers.ShipmentHandler
	Warehouse  *handlers.WarehouseHandler
	Inbound    *handlers.InboundHandler
	StorageFee *handlers.StorageFeeHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	handlers.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware(m))

	r.GET("/healthz", h.Health.Healthz)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	api := r.Group("/api")
	api.GET("/db-check", h.Health.DBCheck)

	shipments := api.Group("/shipments")
	shipments.GET("", h.Shipments.List)
	shipments.POST("", h.Shipments.Create)
	shipments.GET("/:id", h.Shipments.Get)
	shipments.PUT("/:id", h.Shipments.Update)
	shipments.DELETE("/:id", h.Shipments.Delete)

	records := api.Group("/warehouse-records")
	records.GET("", h.Warehouse.List)
	records.POST("", h.Warehouse.Inbound)
	records.PUT("", h.Warehouse.Update)
	records.GET("/:id/fee", h.Warehouse.Fee)

	orders := api.Group("/pending-inbound-orders")
	orders.GET("", h.Inbound.List)
	orders.POST("", h.Inbound.Create)
	orders.GET("/:id", h.Inbound.Get)
	orders.PUT("/:id", h.Inbound.Update)
	orders.DELETE("/:id", h.Inbound.Delete)
	orders.PUT("/:id/complete", h.Inbound.Complete)

	api.POST("/storage-fees/quote", h.StorageFee.Quote)
	api.GET("/reports/storage-fees", h.StorageFee.Report)
	api.GET("/reports/storage-fees/snapshots", h.StorageFee.Snapshots)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}
