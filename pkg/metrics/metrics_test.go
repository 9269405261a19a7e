package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordHTTPRequest(t *testing.T) {
	m := New()

	m.RecordHTTPRequest(http.MethodGet, "/api/shipments", http.StatusOK, 20*time.Millisecond)
	m.RecordHTTPRequest(http.MethodGet, "/api/shipments", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/shipments", "200")))
}

func TestRecordAccrualRun(t *testing.T) {
	m := New()

	m.RecordAccrualRun("success", 12, 48.5, 3)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.AccrualRuns.WithLabelValues("success")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.InWarehouseCount))
	assert.Equal(t, 48.5, testutil.ToFloat64(m.AccruedFee))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ExtendedTierCount))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordHTTPRequest(http.MethodGet, "/", 200, time.Millisecond)
		m.RecordFeeComputed("quote")
		m.RecordOutboundFee(1)
		m.RecordAccrualRun("failure", 0, 0, 0)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RecordFeeComputed("quote")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `warehouse_storage_fees_computed_total{source="quote"} 1`)
}
