package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestCheckReadsStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status":"error","reason":"stale lockfile present at /tmp/service.lock"}`))
	}))
	defer srv.Close()

	p := NewHTTPProber()
	res, err := p.Check(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d", res.StatusCode)
	}
	if res.Healthy() {
		t.Fatal("500 must not be healthy")
	}
	if !res.Settled() {
		t.Fatal("500 is a settled state for the demo")
	}
}

func TestCheckConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewHTTPProber()
	if _, err := p.Check(context.Background(), url); err == nil {
		t.Fatal("expected connection error against closed listener")
	}
}

func TestWaitSettledPollsUntilAnswer(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewHTTPProber()
	p.interval = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := p.WaitSettled(ctx, srv.URL)
	if err != nil {
		t.Fatalf("WaitSettled: %v", err)
	}
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected eventual 200, got %d", res.StatusCode)
	}
	if atomic.LoadInt32(&calls) < 3 {
		t.Fatalf("expected at least 3 polls, got %d", calls)
	}
}

func TestWaitSettledHonorsDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProber()
	p.interval = 10 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := p.WaitSettled(ctx, srv.URL); err == nil {
		t.Fatal("expected deadline error when the target never settles")
	}
}
