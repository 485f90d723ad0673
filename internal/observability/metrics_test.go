package observability

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsWritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/tree", 200, 30*time.Millisecond)
	m.ObserveAPI("GET", "/api/tree", 200, 2*time.Second)
	m.ObserveUpstream("GET", 503, 10*time.Millisecond)
	m.IncTreeLoad("lms")
	m.IncExpansion("fetched")
	m.SetWorkspaces(3)

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`qg_api_requests_total{method="GET",route="/api/tree",status="200"} 2`,
		`qg_api_request_duration_seconds_bucket{method="GET",route="/api/tree",le="0.05"} 1`,
		`qg_api_request_duration_seconds_bucket{method="GET",route="/api/tree",le="+Inf"} 2`,
		`qg_lms_requests_total{method="GET",status="503"} 1`,
		`qg_tree_loads_total{source="lms"} 1`,
		`qg_workspaces 3`,
		"# TYPE qg_api_request_duration_seconds histogram",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "", 200, time.Millisecond)
	m.IncTreeLoad("lms")
	m.InflightInc()

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("nil metrics status: want=503 got=%d", rec.Code)
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("authorization=Bearer x, ,bad,team=student")
	if len(got) != 2 || got["team"] != "student" || got["authorization"] != "Bearer x" {
		t.Fatalf("parseHeaders: got %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("parseHeaders(empty): expected nil")
	}
	if clampRatio(3) != 1 || clampRatio(-1) != 0 {
		t.Fatalf("clampRatio: out of range values must clamp")
	}
}
