package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGetReturnsSingleton(t *testing.T) {
	if Get() != Get() {
		t.Fatal("Get() should always return the same instance")
	}
}

func TestRecordCounters(t *testing.T) {
	m := newMetrics()

	m.RecordImport(120, 3)
	m.RecordImport(80, 0)
	m.RecordImportError()
	m.RecordMappingChange()
	m.RecordWebSocketConnect()
	m.RecordWebSocketConnect()
	m.RecordWebSocketDisconnect()
	m.RecordInsights(false)
	m.RecordInsights(true)
	m.RecordReport("pdf")
	m.RecordReport("pdf")
	m.RecordReport("csv")
	m.RecordReportArchive(nil)
	m.RecordReportArchive(errors.New("bucket missing"))

	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"imports", m.imports, 2},
		{"import errors", m.importErrors, 1},
		{"tickets", m.ticketsImported, 200},
		{"dropped", m.rowsDropped, 3},
		{"workspace tickets", m.workspaceTickets, 80},
		{"mapping changes", m.mappingChanges, 1},
		{"active connections", m.wsActive, 1},
		{"insights generated", m.insights.WithLabelValues("generated"), 1},
		{"insights degraded", m.insights.WithLabelValues("degraded"), 1},
		{"pdf reports", m.reports.WithLabelValues("pdf"), 2},
		{"archived", m.reportArchives.WithLabelValues("archived"), 1},
		{"archive errors", m.reportArchives.WithLabelValues("error"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.collector); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if got := m.GetActiveConnections(); got != 1 {
		t.Errorf("expected 1 active connection, got %d", got)
	}
}

func TestRecordHTTPRequest(t *testing.T) {
	m := newMetrics()
	for i := 0; i < 150; i++ {
		m.RecordHTTPRequest("/api/stats", http.StatusOK, time.Millisecond)
	}
	m.RecordHTTPRequest("/api/stats", http.StatusBadRequest, time.Millisecond)

	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/stats", "200")); got != 150 {
		t.Errorf("expected 150 requests, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/stats", "400")); got != 1 {
		t.Errorf("expected 1 bad request, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := newMetrics()
	m.RecordImport(42, 1)
	m.RecordReport("csv")
	m.RecordAggregationCycle(5*time.Millisecond, 3)
	m.RecordHTTPRequest(`/api/sectors/{name}`, http.StatusCreated, time.Millisecond)

	rr := httptest.NewRecorder()
	m.Handler()(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"mtsav_imports_total 1\n",
		"mtsav_tickets_imported_total 42\n",
		"mtsav_workspace_tickets 42\n",
		`mtsav_reports_generated_total{format="csv"} 1`,
		"mtsav_snapshots_sent_total 3\n",
		"mtsav_aggregation_duration_seconds_count 1\n",
		`mtsav_http_requests_total{endpoint="/api/sectors/{name}",status="201"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
