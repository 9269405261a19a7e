package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "warehouse"

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	FeesComputed      *prometheus.CounterVec
	OutboundFee       prometheus.Histogram
	AccrualRuns       *prometheus.CounterVec
	InWarehouseCount  prometheus.Gauge
	AccruedFee        prometheus.Gauge
	ExtendedTierCount prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	m.HTTPRequestsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_requests_in_flight",
		Help:      "Number of HTTP requests being served",
	})

	m.FeesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_fees_computed_total",
			Help:      "Storage fee computations by caller",
		},
		[]string{"source"},
	)
	m.OutboundFee = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "outbound_storage_fee",
		Help:      "Storage fee settled at outbound, in currency units",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
	m.AccrualRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_accrual_runs_total",
			Help:      "Scheduled storage accrual runs by outcome",
		},
		[]string{"outcome"},
	)
	m.InWarehouseCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records_in_warehouse",
		Help:      "Open warehouse records at the last accrual run",
	})
	m.AccruedFee = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "accrued_storage_fee",
		Help:      "Storage fee accrued by open records at the last accrual run",
	})
	m.ExtendedTierCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "records_in_extended_tier",
		Help:      "Open records billed at the extended rate at the last accrual run",
	})

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.FeesComputed,
		m.OutboundFee,
		m.AccrualRuns,
		m.InWarehouseCount,
		m.AccruedFee,
		m.ExtendedTierCount,
	)

	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one served request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordFeeComputed counts a fee computation made on behalf of source.
func (m *Metrics) RecordFeeComputed(source string) {
	if m == nil {
		return
	}
	m.FeesComputed.WithLabelValues(source).Inc()
}

// RecordOutboundFee observes the fee settled when a shipment leaves.
func (m *Metrics) RecordOutboundFee(fee float64) {
	if m == nil {
		return
	}
	m.OutboundFee.Observe(fee)
}

// RecordAccrualRun stores the outcome and the gauges of an accrual run.
func (m *Metrics) RecordAccrualRun(outcome string, inWarehouse int, accrued float64, extended int) {
	if m == nil {
		return
	}
	m.AccrualRuns.WithLabelValues(outcome).Inc()
	m.InWarehouseCount.Set(float64(inWarehouse))
	m.AccruedFee.Set(accrued)
	m.ExtendedTierCount.Set(float64(extended))
}
