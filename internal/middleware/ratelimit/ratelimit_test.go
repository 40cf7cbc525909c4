package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newLimiter(t *testing.T, perMinute int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: perMinute, Now: clock.Now})
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestAllowWithinWindow(t *testing.T) {
	rl, clock := newLimiter(t, 3)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatal("fourth request in the same minute should be rejected")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("other clients are not affected")
	}

	clock.Advance(time.Minute)
	if !rl.Allow("10.0.0.1") {
		t.Error("a new window should allow again")
	}
	if got := rl.GetMetrics().TotalHits; got != 1 {
		t.Errorf("TotalHits = %d, want 1", got)
	}
}

func TestSteadyTrafficDoesNotExtendWindow(t *testing.T) {
	rl, clock := newLimiter(t, 2)

	rl.Allow("a")
	clock.Advance(40 * time.Second)
	rl.Allow("a")
	clock.Advance(30 * time.Second)
	if !rl.Allow("a") {
		t.Error("the window started 70s ago and must have reset")
	}
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newLimiter(t, 10)
	rl.Allow("a")
	clock.Advance(5 * time.Minute)
	rl.Allow("b")
	clock.Advance(6 * time.Minute)

	rl.cleanupStaleEntries()

	if got := rl.ActiveClients(); got != 1 {
		t.Errorf("ActiveClients = %d, want 1", got)
	}
}

func TestMiddlewareOnlyLimitsListedMethods(t *testing.T) {
	rl, _ := newLimiter(t, 1)
	ip := func(*http.Request) string { return "10.0.0.9" }
	h := rl.Middleware(ip, nil, http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/contributions", nil))
		return rr
	}

	if rr := do(http.MethodPost); rr.Code != http.StatusNoContent {
		t.Fatalf("first POST status = %d", rr.Code)
	}
	rr := do(http.MethodPost)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second POST status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Error("Retry-After header missing")
	}
	for i := 0; i < 5; i++ {
		if rr := do(http.MethodGet); rr.Code != http.StatusNoContent {
			t.Fatalf("GET status = %d", rr.Code)
		}
	}
}

func TestTakeReportsQuota(t *testing.T) {
	rl, clock := newLimiter(t, 2)
	start := clock.Now()

	d := rl.Take("a")
	if !d.Allowed || d.Limit != 2 || d.Remaining != 1 || !d.ResetAt.Equal(start.Add(time.Minute)) {
		t.Fatalf("first decision = %+v", d)
	}
	rl.Take("a")
	clock.Advance(15 * time.Second)
	d = rl.Take("a")
	if d.Allowed || d.Remaining != 0 {
		t.Fatalf("third decision = %+v", d)
	}
	if got := d.RetryAfter(clock.Now()); got != 45*time.Second {
		t.Errorf("RetryAfter = %v, want 45s", got)
	}
}

func TestMiddlewareRetryAfterTracksWindow(t *testing.T) {
	rl, clock := newLimiter(t, 1)
	h := rl.Middleware(func(*http.Request) string { return "b" }, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-RateLimit-Remaining") != "0" || rr.Header().Get("X-RateLimit-Limit") != "1" {
		t.Fatalf("quota headers = %v", rr.Header())
	}

	clock.Advance(20 * time.Second)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "40" {
		t.Errorf("Retry-After = %q, want 40", got)
	}
}
