package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
	"github.com/mamadbah2/warehouse/internal/service/inbound"
	"github.com/mamadbah2/warehouse/internal/service/warehouse"
)

// Accepted timestamp layouts, tried in order. Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized timestamp %q", models.ErrInvalidInput, value)
}

// parseOptionalTimestamp returns nil for an empty value.
func parseOptionalTimestamp(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := parseTimestamp(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseObjectID(value string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: invalid id %q", models.ErrInvalidInput, value)
	}
	return id, nil
}

func parseOptionalObjectID(value string) (*primitive.ObjectID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseObjectID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// tariffFields are the optional tariff overrides accepted by several endpoints.
type tariffFields struct {
	FreeDays          *int     `json:"freeDays" binding:"omitempty,gte=0"`
	StandardRate      *float64 `json:"standardRate" binding:"omitempty,gte=0"`
	ExtendedRate      *float64 `json:"extendedRate" binding:"omitempty,gte=0"`
	StandardDaysLimit *int     `json:"standardDaysLimit" binding:"omitempty,gt=0"`
}

func (t tariffFields) override() warehouse.TariffOverride {
	return warehouse.TariffOverride{
		FreeDays:          t.FreeDays,
		StandardRate:      t.StandardRate,
		ExtendedRate:      t.ExtendedRate,
		StandardDaysLimit: t.StandardDaysLimit,
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, warehouse.ErrOpenRecordExists):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, storagefee.ErrInvalidTariff),
		errors.Is(err, storagefee.ErrInvertedInterval),
		errors.Is(err, warehouse.ErrRecordRequired),
		errors.Is(err, inbound.ErrAlreadyCompleted):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps a service error to its status code and writes the
// error body. Server errors are logged.
func respondError(c *gin.Context, logger *zap.Logger, message string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(message, zap.Error(err))
	} else {
		logger.Debug(message, zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

func respondBadRequest(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
}
