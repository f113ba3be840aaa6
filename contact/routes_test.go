package contact

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestMux(t *testing.T, fw Forwarder) *http.ServeMux {
	t.Helper()
	routes := Routes(RoutesOptions{
		Contact:        newTestHandler(t, fw, nil),
		AllowedOrigins: []string{"https://codiii.com"},
		Logger:         zaptest.NewLogger(t),
	})
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.Handle(pattern, h)
	}
	return mux
}

func TestRoutes_EachRouteAnswersPreflight(t *testing.T) {
	mux := newTestMux(t, okForwarder())

	for _, path := range []string{"/api/contact", "/api/health", "/missing"} {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://codiii.com")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: expected 204, got %d", path, rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Fatalf("%s: expected CORS headers", path)
		}
	}
}

func TestRoutes_NoSharedRateLimit(t *testing.T) {
	fw := okForwarder()
	mux := newTestMux(t, fw)

	for i := 0; i < 8; i++ {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(validBody)))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if fw.count() != 8 {
		t.Fatalf("expected 8 forwards, got %d", fw.count())
	}
}

func TestRoutes_HealthAndNotFound(t *testing.T) {
	mux := newTestMux(t, okForwarder())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nothing/here", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if er := decodeError(t, rec); er.Message != "Endpoint not found" {
		t.Fatalf("unexpected message %q", er.Message)
	}
}
