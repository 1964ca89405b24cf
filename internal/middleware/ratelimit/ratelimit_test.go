package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mibolsillo/internal/metrics"
)

func TestLimiter_Allow(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 2})
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Fatal("third request in the same minute should be limited")
	}
	if !rl.Allow("5.6.7.8") {
		t.Fatal("other clients have their own budget")
	}

	// Retrying inside the window must not extend it.
	now = now.Add(59 * time.Second)
	if rl.Allow("1.2.3.4") {
		t.Fatal("still inside the window")
	}
	now = now.Add(2 * time.Second)
	if !rl.Allow("1.2.3.4") {
		t.Fatal("a new window should reset the count")
	}
}

func TestLimiter_Cleanup(t *testing.T) {
	m := metrics.New()
	rl := NewLimiter(Config{RequestsPerMinute: 5, Metrics: m})
	defer rl.Stop()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.Allow("a")
	rl.Allow("b")
	if rl.ActiveClients() != 2 {
		t.Fatalf("ActiveClients() = %d, want 2", rl.ActiveClients())
	}

	now = now.Add(11 * time.Minute)
	if removed := rl.cleanupStaleEntries(); removed != 2 {
		t.Fatalf("cleanupStaleEntries() = %d, want 2", removed)
	}
	if rl.ActiveClients() != 0 {
		t.Fatalf("ActiveClients() = %d, want 0", rl.ActiveClients())
	}
}

func TestLimiter_Middleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 1, Metrics: metrics.New()})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "9.9.9.9" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		name   string
		method string
		want   int
	}{
		{"first post allowed", http.MethodPost, http.StatusNoContent},
		{"second post limited", http.MethodPost, http.StatusTooManyRequests},
		{"gets are never limited", http.MethodGet, http.StatusNoContent},
		{"delete limited", http.MethodDelete, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, "/bills", nil))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			if tt.want == http.StatusTooManyRequests && rr.Header().Get("Retry-After") != "60" {
				t.Fatal("limited responses should carry Retry-After")
			}
		})
	}
}

func TestLimiter_Exempt(t *testing.T) {
	rl := NewLimiter(Config{
		RequestsPerMinute: 1,
		Metrics:           metrics.New(),
		Exempt:            func(r *http.Request) bool { return r.URL.Path == "/ui/bills/draft" },
	})
	defer rl.Stop()

	h := rl.Middleware(func(*http.Request) string { return "9.9.9.9" }, nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) }))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"exempt path", "/ui/bills/draft", http.StatusNoContent},
		{"exempt path again", "/ui/bills/draft", http.StatusNoContent},
		{"first counted post", "/bills", http.StatusNoContent},
		{"second counted post", "/bills", http.StatusTooManyRequests},
		{"exempt path after limit", "/ui/bills/draft", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, tt.path, nil))
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
