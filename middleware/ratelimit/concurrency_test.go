package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"contact-gateway/middleware/ratelimit/infra"
)

func TestConcurrencyMiddleware_TimesOutWhenNoSlot(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	secondDone := make(chan struct{})
	var startedOnce sync.Once

	// handler que segura a vaga até liberarmos.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startedOnce.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusOK)
	})

	var rejectedWith int
	pool := infra.NewChanPool(1)
	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Pool:           pool,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: 25 * time.Millisecond,
		Reject: func(w http.ResponseWriter, _ *http.Request, status int, _ error) {
			rejectedWith = status
			w.WriteHeader(status)
		},
	})(next)

	var wg sync.WaitGroup
	wg.Add(2)

	// request 1: ocupa o semáforo e fica pendurado
	go func() {
		defer wg.Done()
		r1 := httptest.NewRequest(http.MethodPost, "http://example/api/contact", nil)
		w1 := httptest.NewRecorder()
		h.ServeHTTP(w1, r1)
		if w1.Code != http.StatusOK {
			t.Errorf("expected first request 200, got %d", w1.Code)
		}
	}()

	select {
	case <-started:
	case <-time.After(200 * time.Millisecond):
		close(release)
		wg.Wait()
		t.Fatalf("timeout waiting first request to start")
	}
	if pool.InUse() != 1 {
		t.Fatalf("expected 1 slot in use, got %d", pool.InUse())
	}

	// request 2: deve falhar por timeout ao tentar adquirir
	go func() {
		defer wg.Done()
		r2 := httptest.NewRequest(http.MethodPost, "http://example/api/contact", nil)
		w2 := httptest.NewRecorder()
		h.ServeHTTP(w2, r2)
		if w2.Code != http.StatusServiceUnavailable {
			t.Errorf("expected second request 503, got %d", w2.Code)
		}
		close(secondDone)
	}()

	select {
	case <-secondDone:
	case <-time.After(500 * time.Millisecond):
		close(release)
		wg.Wait()
		t.Fatalf("timeout waiting second request to finish")
	}

	close(release)
	wg.Wait()

	if rejectedWith != http.StatusServiceUnavailable {
		t.Fatalf("expected custom reject to be called with 503, got %d", rejectedWith)
	}
	if pool.InUse() != 0 {
		t.Fatalf("expected slot released, got %d in use", pool.InUse())
	}
}

func TestConcurrencyMiddleware_DisabledPassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	h := ConcurrencyMiddleware(ConcurrencyOptions{})(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example/", nil))

	if !called {
		t.Fatalf("expected next to be called")
	}
}

func TestConcurrencyMiddleware_ClientGoneIsNotRejected(t *testing.T) {
	pool := infra.NewChanPool(1)
	hold, _ := pool.Acquire(context.Background())
	defer hold()

	rejected := false
	h := ConcurrencyMiddleware(ConcurrencyOptions{
		Pool: pool,
		Reject: func(w http.ResponseWriter, _ *http.Request, status int, _ error) {
			rejected = true
			w.WriteHeader(status)
		},
	})(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Errorf("next must not run without a slot")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := httptest.NewRequest(http.MethodPost, "http://example/api/contact", nil).WithContext(ctx)
	h.ServeHTTP(httptest.NewRecorder(), r)

	if rejected {
		t.Fatalf("expected no reject response for a cancelled client")
	}
}
