package contact

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contact-gateway/metrics"

	"go.uber.org/zap/zaptest"
)

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	return rec.Body.String()
}

func TestObserve_SilentHandlerCountsAs200(t *testing.T) {
	m := metrics.New()
	h := Observe(zaptest.NewLogger(t), m, fixedRoute("/api/health"))(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if body := scrape(t, m); !strings.Contains(body, `contact_http_requests_total{method="GET",route="/api/health",status="200"} 1`) {
		t.Fatalf("expected a 200 sample:\n%s", body)
	}
}

func TestRouter_ClientGoneWhileWaitingForSlotIs499(t *testing.T) {
	m := metrics.New()
	entered := make(chan struct{})
	release := make(chan struct{})
	r := NewRouter(RouterOptions{
		Contact: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			close(entered)
			<-release
			w.WriteHeader(http.StatusOK)
		}),
		Metrics:            m,
		Logger:             zaptest.NewLogger(t),
		ConcurrencyMax:     1,
		ConcurrencyTimeout: time.Second,
	})

	// segura a única vaga
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/contact", nil))
	}()
	<-entered

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", nil).WithContext(ctx))

	close(release)
	<-done

	if rec.Body.Len() != 0 {
		t.Fatalf("expected nothing written for a gone client, got %q", rec.Body.String())
	}
	body := scrape(t, m)
	if !strings.Contains(body, `contact_http_requests_total{method="POST",route="/api/contact",status="499"} 1`) {
		t.Fatalf("expected the abandoned request under 499:\n%s", body)
	}
	if !strings.Contains(body, `contact_http_requests_total{method="POST",route="/api/contact",status="200"} 1`) {
		t.Fatalf("expected only the slot holder under 200:\n%s", body)
	}
}
