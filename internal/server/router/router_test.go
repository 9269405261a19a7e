package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mamadbah2/warehouse/internal/domain/storagefee"
	"github.com/mamadbah2/warehouse/internal/server/handlers"
	"github.com/mamadbah2/warehouse/pkg/metrics"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newTestEngine(t *testing.T, m *metrics.Metrics, logger *zap.Logger) http.Handler {
	t.Helper()
	return New(Handlers{
		Health:     handlers.NewHealthHandler(okPinger{}, nil, nil),
		Shipments:  handlers.NewShipmentHandler(nil, nil),
		Warehouse:  handlers.NewWarehouseHandler(nil, nil),
		Inbound:    handlers.NewInboundHandler(nil, nil),
		StorageFee: handlers.NewStorageFeeHandler(nil, storagefee.DefaultTariff(), nil, m, nil),
	}, m, logger)
}

func TestRoutesAreMounted(t *testing.T) {
	engine := New(Handlers{
		Health:     handlers.NewHealthHandler(okPinger{}, nil, nil),
		Shipments:  handlers.NewShipmentHandler(nil, nil),
		Warehouse:  handlers.NewWarehouseHandler(nil, nil),
		Inbound:    handlers.NewInboundHandler(nil, nil),
		StorageFee: handlers.NewStorageFeeHandler(nil, storagefee.DefaultTariff(), nil, nil, nil),
	}, metrics.New(), nil)

	want := map[string]bool{
		"GET /healthz":                                 true,
		"GET /metrics":                                 true,
		"GET /api/db-check":                            true,
		"GET /api/shipments":                           true,
		"POST /api/shipments":                          true,
		"GET /api/shipments/:id":                       true,
		"PUT /api/shipments/:id":                       true,
		"DELETE /api/shipments/:id":                    true,
		"GET /api/warehouse-records":                   true,
		"POST /api/warehouse-records":                  true,
		"PUT /api/warehouse-records":                   true,
		"GET /api/warehouse-records/:id/fee":           true,
		"GET /api/pending-inbound-orders":              true,
		"POST /api/pending-inbound-orders":             true,
		"GET /api/pending-inbound-orders/:id":          true,
		"PUT /api/pending-inbound-orders/:id":          true,
		"DELETE /api/pending-inbound-orders/:id":       true,
		"PUT /api/pending-inbound-orders/:id/complete": true,
		"POST /api/storage-fees/quote":                 true,
		"GET /api/reports/storage-fees":                true,
		"GET /api/reports/storage-fees/snapshots":      true,
	}

	for _, route := range engine.Routes() {
		delete(want, route.Method+" "+route.Path)
	}
	assert.Empty(t, want)
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	engine := newTestEngine(t, nil, nil)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRequestsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := newTestEngine(t, nil, zap.New(core))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-1")
	engine.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/healthz", fields["path"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
	assert.Equal(t, "req-1", fields["request_id"])
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	engine := newTestEngine(t, m, nil)

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/healthz", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "warehouse_http_requests_total")
}

func TestInFlightGaugeSurvivesPanics(t *testing.T) {
	m := metrics.New()
	engine := New(Handlers{
		Health:     handlers.NewHealthHandler(okPinger{}, nil, nil),
		Shipments:  handlers.NewShipmentHandler(nil, nil),
		Warehouse:  handlers.NewWarehouseHandler(nil, nil),
		Inbound:    handlers.NewInboundHandler(nil, nil),
		StorageFee: handlers.NewStorageFeeHandler(nil, storagefee.DefaultTariff(), nil, m, nil),
	}, m, nil)
	engine.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
}
