package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/warehouse/internal/domain/models"
	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
	"github.com/mamadbah2/warehouse/internal/service/reporting"
)

const (
	defaultSnapshotLimit = 30
	maxSnapshotLimit     = 366
)

// ReportService is the reporting use cases exposed over HTTP.
type ReportService interface {
	StorageFeeReport(ctx context.Context, q reporting.Query) (*reporting.Report, error)
	RecentSnapshots(ctx context.Context, limit int) ([]models.StorageFeeSnapshot, error)
}

// FeeRecorder counts fee computations.
type FeeRecorder interface {
	RecordFeeComputed(source string)
}

type quoteRequest struct {
	InboundDate  string  `json:"inboundDate" binding:"required"`
	OutboundDate string  `json:"outboundDate"`
	VolumeCBM    float64 `json:"volumeCbm"`
	tariffFields
}

type quoteResponse struct {
	StorageDays     int                     `json:"storageDays"`
	Tariff          storagefee.TariffConfig `json:"tariff"`
	Breakdown       storagefee.FeeBreakdown `json:"breakdown"`
	Tiers           []storagefee.TierLine   `json:"tiers"`
	TotalFee        float64                 `json:"totalFee"`
	TotalFeeDisplay string                  `json:"totalFeeDisplay"`
}

// StorageFeeHandler serves fee quotes and storage fee reports.
type StorageFeeHandler struct {
	calc     *storagefee.Calculator
	tariff   storagefee.TariffConfig
	reports  ReportService
	recorder FeeRecorder
	logger   *zap.Logger
}

// NewStorageFeeHandler constructs the HTTP handler adapter. tariff is the
// base quotes are priced with.
func NewStorageFeeHandler(calc *storagefee.Calculator, tariff storagefee.TariffConfig, reports ReportService, recorder FeeRecorder, logger *zap.Logger) *StorageFeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calc == nil {
		calc = storagefee.NewCalculator(false)
	}
	return &StorageFeeHandler{calc: calc, tariff: tariff, reports: reports, recorder: recorder, logger: logger}
}

// Quote prices a hypothetical stay without touching stored data.
func (h *StorageFeeHandler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, h.logger, err)
		return
	}

	inboundDate, err := parseTimestamp(req.InboundDate)
	if err != nil {
		respondError(c, h.logger, "invalid inbound date", err)
		return
	}
	outboundDate, err := parseOptionalTimestamp(req.OutboundDate)
	if err != nil {
		respondError(c, h.logger, "invalid outbound date", err)
		return
	}

	tariff := req.override().Apply(h.tariff)
	if err := tariff.Validate(); err != nil {
		respondError(c, h.logger, "invalid tariff", err)
		return
	}

	breakdown, err := h.calc.FeeForInterval(storagefee.StorageInterval{
		InboundDate:  inboundDate,
		OutboundDate: outboundDate,
		VolumeCBM:    req.VolumeCBM,
	}, tariff)
	if err != nil {
		respondError(c, h.logger, "failed to compute storage fee", err)
		return
	}
	if h.recorder != nil {
		h.recorder.RecordFeeComputed("quote")
	}

	total := storagefee.Round2(breakdown.TotalFee)
	c.JSON(http.StatusOK, quoteResponse{
		StorageDays:     breakdown.Details.TotalDays,
		Tariff:          tariff,
		Breakdown:       breakdown,
		Tiers:           storagefee.DescribeTiers(breakdown, tariff),
		TotalFee:        total,
		TotalFeeDisplay: storagefee.FormatCurrency(total),
	})
}

// Report returns the storage fee statement. range is a day count or "all".
func (h *StorageFeeHandler) Report(c *gin.Context) {
	rangeDays, err := parseRange(c.DefaultQuery("range", "all"))
	if err != nil {
		respondError(c, h.logger, "invalid range", err)
		return
	}

	report, err := h.reports.StorageFeeReport(c.Request.Context(), reporting.Query{RangeDays: rangeDays})
	if err != nil {
		respondError(c, h.logger, "failed to build storage fee report", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// Snapshots returns the latest daily snapshots.
func (h *StorageFeeHandler) Snapshots(c *gin.Context) {
	limit := defaultSnapshotLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxSnapshotLimit {
			respondError(c, h.logger, "invalid limit", fmt.Errorf("%w: limit must be between 1 and %d", models.ErrInvalidInput, maxSnapshotLimit))
			return
		}
		limit = n
	}

	snapshots, err := h.reports.RecentSnapshots(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, "failed to load snapshots", err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

func parseRange(value string) (int, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || value == "all" {
		return 0, nil
	}
	days, err := strconv.Atoi(value)
	if err != nil || days <= 0 {
		return 0, fmt.Errorf("%w: range must be a positive day count or \"all\", got %q", models.ErrInvalidInput, value)
	}
	return days, nil
}
