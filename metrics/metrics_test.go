package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_CountersAndHandler(t *testing.T) {
	m := New(WithNamespace("test"))

	m.Submission(OutcomeForwarded)
	m.Submission(OutcomeForwarded)
	m.Submission(OutcomeInvalid)
	m.RateDecision(true)
	m.RateDecision(false)
	m.ObserveHTTP("/api/contact", http.MethodPost, http.StatusOK, 20*time.Millisecond)
	m.ObserveUpstream(200, 10*time.Millisecond)
	m.ObserveUpstream(0, time.Second)

	if got := testutil.ToFloat64(m.submissions.WithLabelValues(OutcomeForwarded)); got != 2 {
		t.Fatalf("expected 2 forwarded submissions, got %v", got)
	}
	if got := testutil.ToFloat64(m.rateDecisions.WithLabelValues("denied")); got != 1 {
		t.Fatalf("expected 1 denied decision, got %v", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("/api/contact", "POST", "200")); got != 1 {
		t.Fatalf("expected 1 request, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"test_submissions_total",
		"test_ratelimit_decisions_total",
		"test_upstream_request_duration_seconds",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected exposition to contain %q", want)
		}
	}
}

func TestMetrics_GaugeFunc(t *testing.T) {
	m := New()
	m.GaugeFunc("ratelimit", "tracked_clients", "Tracked keys.", func() float64 { return 7 })

	n, err := testutil.GatherAndCount(m.Registry(), "contact_ratelimit_tracked_clients")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 series, got %d", n)
	}
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *Metrics
	m.Submission(OutcomeInvalid)
	m.RateDecision(true)
	m.ObserveHTTP("", "GET", 200, 0)
	m.ObserveUpstream(500, 0)
	m.GaugeFunc("x", "y", "z", func() float64 { return 0 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{0: "error", 200: "2xx", 302: "3xx", 404: "4xx", 503: "5xx"}
	for in, want := range cases {
		if got := statusClass(in); got != want {
			t.Fatalf("statusClass(%d) = %q, want %q", in, got, want)
		}
	}
}
