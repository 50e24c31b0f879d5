package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObserveRequest("insights", "ok", 120*time.Millisecond)
	m.ObserveRequest("insights", "ok", 80*time.Millisecond)
	m.Fallback("history")
	m.ProviderError("yahoo")
	m.ObserveCompute(250, time.Millisecond)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("insights", "ok")); got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FallbacksTotal.WithLabelValues("history")); got != 1 {
		t.Errorf("fallbacks = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.BarsProcessed); got != 250 {
		t.Errorf("bars = %v, want 250", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `insights_fallbacks_total{subsystem="history"} 1`) {
		t.Errorf("exposition is missing the fallback counter:\n%s", rec.Body.String())
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("insights", "ok", time.Second)
	m.Fallback("quote")
	m.ProviderError("news")
	m.ObserveCompute(1, time.Second)
}
