package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	return string(body)
}

func TestCounters(t *testing.T) {
	m := New()
	m.ObserveRequest("/api/v1/projects", "GET", "200")
	m.ObserveRun("export", "roehn", "ok")
	m.ObserveRun("export", "roehn", "ok")
	m.ObserveSkipped("link", 3)
	m.ObserveSkipped("scene", 0)
	m.ObserveRejection("duplicate_address")

	out := scrape(t, m)
	want := []string{
		`designer_http_requests_total{method="GET",route="/api/v1/projects",status="200"} 1`,
		`designer_compile_runs_total{direction="export",format="roehn",result="ok"} 2`,
		`designer_compile_skipped_total{entity="link"} 3`,
		`designer_allocation_rejections_total{reason="duplicate_address"} 1`,
		`go_goroutines`,
	}
	for _, line := range want {
		if !strings.Contains(out, line) {
			t.Errorf("metrics output lacks %q", line)
		}
	}
	if strings.Contains(out, `entity="scene"`) {
		t.Error("zero skip count created a series")
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("/", "GET", "200")
	m.ObserveRun("import", "snapshot", "error")
	m.ObserveSkipped("scene", 1)
	m.ObserveRejection("exhausted")
}
