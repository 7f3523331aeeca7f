package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTurnCountsByOutcomeAndMode(t *testing.T) {
	before := testutil.ToFloat64(turnsTotal.WithLabelValues("unsafe_query", "fresh"))
	ObserveTurn("unsafe_query", "fresh", 20*time.Millisecond)
	ObserveTurn("unsafe_query", "fresh", 30*time.Millisecond)
	if got := testutil.ToFloat64(turnsTotal.WithLabelValues("unsafe_query", "fresh")) - before; got != 2 {
		t.Fatalf("turns delta = %v", got)
	}
}

func TestSetActiveSessionsClampsNegative(t *testing.T) {
	SetActiveSessions(-3)
	if got := testutil.ToFloat64(activeSessions); got != 0 {
		t.Fatalf("active sessions = %v", got)
	}
	SetActiveSessions(4)
	if got := testutil.ToFloat64(activeSessions); got != 4 {
		t.Fatalf("active sessions = %v", got)
	}
}

func TestMetricsMiddlewareLabelsByRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/sessions/{session}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := MetricsMiddleware(mux)

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /v1/sessions/{session}", "200")
	before := testutil.ToFloat64(counter)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions/def", nil))
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("requests delta = %v", got)
	}
}
