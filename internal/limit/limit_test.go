package limit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimitMiddleware_BlocksAfterBurst(t *testing.T) {
	l := NewIPRateLimiter(0, 2)
	h := l.LimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v, want [204 204 429]", codes)
	}

	// Another port on the same host shares the bucket; another host does not.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:6666"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same host code = %d, want 429", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("other host code = %d, want 204", rec.Code)
	}
}

func TestSweep_DropsIdleHosts(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	l.allow("10.0.0.1")
	clock = clock.Add(20 * time.Minute)
	l.allow("10.0.0.2")
	clock = clock.Add(20 * time.Minute)

	if n := l.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	if l.Len() != 1 {
		t.Fatalf("len = %d, want 1", l.Len())
	}
	if _, ok := l.visitors["10.0.0.2"]; !ok {
		t.Fatalf("recent host was dropped")
	}

	// A swept host starts again with a full bucket.
	if !l.allow("10.0.0.1") {
		t.Fatalf("returning host denied")
	}
}
