package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks the database connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter counts the documents of one collection.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// HealthHandler serves liveness and database checks.
type HealthHandler struct {
	db       Pinger
	counters map[string]Counter
	logger   *zap.Logger
}

// NewHealthHandler constructs the HTTP handler adapter. counters are
// reported by name on the database check.
func NewHealthHandler(db Pinger, counters map[string]Counter, logger *zap.Logger) *HealthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HealthHandler{db: db, counters: counters, logger: logger}
}

// Healthz reports the process is up.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DBCheck pings the database and counts the documents of each collection.
func (h *HealthHandler) DBCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("database check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"error":   "database unreachable",
			"details": err.Error(),
		})
		return
	}

	counts := make(map[string]int64, len(h.counters))
	for name, counter := range h.counters {
		n, err := counter.Count(ctx)
		if err != nil {
			respondError(c, h.logger, "failed to count "+name, err)
			return
		}
		counts[name] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "connected",
		"counts":   counts,
	})
}
