package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mtsav"

// Metrics holds all application metrics
type Metrics struct {
	registry *prometheus.Registry

	// Import metrics
	imports          prometheus.Counter
	importErrors     prometheus.Counter
	ticketsImported  prometheus.Counter
	rowsDropped      prometheus.Counter
	workspaceTickets prometheus.Gauge
	mappingChanges   prometheus.Counter

	// WebSocket metrics
	wsConnections    prometheus.Counter
	wsDisconnections prometheus.Counter
	wsActive         prometheus.Gauge
	wsMessages       prometheus.Counter
	wsErrors         prometheus.Counter

	// Aggregation metrics
	aggregationCycles   prometheus.Counter
	snapshotsSent       prometheus.Counter
	aggregationErrors   prometheus.Counter
	aggregationDuration prometheus.Histogram

	// Output metrics
	insights        *prometheus.CounterVec // outcome
	reports         *prometheus.CounterVec // format
	reportArchives  *prometheus.CounterVec // result
	httpRequests    *prometheus.CounterVec // endpoint, status
	httpDurations   *prometheus.HistogramVec
	activeWebSocket int64
	mu              sync.Mutex
}

// Global metrics instance
var instance *Metrics
var once sync.Once

// Get returns the singleton metrics instance
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics()
	})
	return instance
}

func newMetrics() *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),

		imports:          counter("imports_total", "Workbooks imported successfully."),
		importErrors:     counter("import_errors_total", "Workbooks rejected."),
		ticketsImported:  counter("tickets_imported_total", "Tickets read from imported workbooks."),
		rowsDropped:      counter("rows_dropped_total", "Data rows skipped for lack of ND."),
		workspaceTickets: gauge("workspace_tickets", "Tickets in the current workspace."),
		mappingChanges:   counter("mapping_changes_total", "Sector mapping edits."),

		wsConnections:    counter("websocket_connections_total", "Dashboard websocket connections opened."),
		wsDisconnections: counter("websocket_disconnections_total", "Dashboard websocket connections closed."),
		wsActive:         gauge("websocket_active_connections", "Open dashboard websocket connections."),
		wsMessages:       counter("websocket_messages_total", "Messages received from dashboards."),
		wsErrors:         counter("websocket_errors_total", "Websocket upgrade or protocol errors."),

		aggregationCycles: counter("aggregation_cycles_total", "Dashboard refresh cycles."),
		snapshotsSent:     counter("snapshots_sent_total", "Snapshots pushed to dashboards."),
		aggregationErrors: counter("aggregation_errors_total", "Snapshots that could not be computed."),
		aggregationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of a dashboard refresh cycle.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),

		insights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "insights_requests_total", Help: "Insight requests by outcome.",
		}, []string{"outcome"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "reports_generated_total", Help: "Reports generated by format.",
		}, []string{"format"}),
		reportArchives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "report_archives_total", Help: "Report archive attempts by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"endpoint", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.imports, m.importErrors, m.ticketsImported, m.rowsDropped, m.workspaceTickets, m.mappingChanges,
		m.wsConnections, m.wsDisconnections, m.wsActive, m.wsMessages, m.wsErrors,
		m.aggregationCycles, m.snapshotsSent, m.aggregationErrors, m.aggregationDuration,
		m.insights, m.reports, m.reportArchives, m.httpRequests, m.httpDurations,
	)
	return m
}

// RecordImport records a successful workbook import
func (m *Metrics) RecordImport(tickets, dropped int) {
	m.imports.Inc()
	m.ticketsImported.Add(float64(tickets))
	m.rowsDropped.Add(float64(dropped))
	m.workspaceTickets.Set(float64(tickets))
}

// RecordImportError increments the failed import counter
func (m *Metrics) RecordImportError() {
	m.importErrors.Inc()
}

// RecordMappingChange increments the sector mapping change counter
func (m *Metrics) RecordMappingChange() {
	m.mappingChanges.Inc()
}

// RecordWebSocketConnect increments connection counters
func (m *Metrics) RecordWebSocketConnect() {
	m.mu.Lock()
	m.activeWebSocket++
	m.mu.Unlock()
	m.wsConnections.Inc()
	m.wsActive.Inc()
}

// RecordWebSocketDisconnect increments disconnection counter
func (m *Metrics) RecordWebSocketDisconnect() {
	m.mu.Lock()
	m.activeWebSocket--
	m.mu.Unlock()
	m.wsDisconnections.Inc()
	m.wsActive.Dec()
}

// RecordWebSocketMessage increments message counter
func (m *Metrics) RecordWebSocketMessage() {
	m.wsMessages.Inc()
}

// RecordWebSocketError increments WebSocket error counter
func (m *Metrics) RecordWebSocketError() {
	m.wsErrors.Inc()
}

// RecordAggregationCycle records one dashboard refresh
func (m *Metrics) RecordAggregationCycle(duration time.Duration, snapshots int) {
	m.aggregationCycles.Inc()
	m.snapshotsSent.Add(float64(snapshots))
	m.aggregationDuration.Observe(duration.Seconds())
}

// RecordAggregationError increments aggregation error counter
func (m *Metrics) RecordAggregationError() {
	m.aggregationErrors.Inc()
}

// RecordInsights records an insights request and whether it fell back
func (m *Metrics) RecordInsights(degraded bool) {
	outcome := "generated"
	if degraded {
		outcome = "degraded"
	}
	m.insights.WithLabelValues(outcome).Inc()
}

// RecordReport records a generated report of the given format (pdf, csv)
func (m *Metrics) RecordReport(format string) {
	m.reports.WithLabelValues(format).Inc()
}

// RecordReportArchive records the outcome of archiving a report
func (m *Metrics) RecordReportArchive(err error) {
	result := "archived"
	if err != nil {
		result = "error"
	}
	m.reportArchives.WithLabelValues(result).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(endpoint string, statusCode int, duration time.Duration) {
	m.httpRequests.WithLabelValues(endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpDurations.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// GetActiveConnections returns current WebSocket connections
func (m *Metrics) GetActiveConnections() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeWebSocket
}

// Handler returns an HTTP handler for the /metrics endpoint
func (m *Metrics) Handler() http.HandlerFunc {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry}).ServeHTTP
}
