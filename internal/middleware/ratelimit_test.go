package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimitBySession(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RateLimitBy(2, time.Minute, BySession)(ok)

	call := func(sid string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "198.51.100.10:1234"
		req = req.WithContext(WithSessionID(req.Context(), sid))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if got := call("a"); got != http.StatusNoContent {
		t.Fatalf("first call = %d", got)
	}
	if got := call("a"); got != http.StatusNoContent {
		t.Fatalf("second call = %d", got)
	}
	if got := call("a"); got != http.StatusTooManyRequests {
		t.Fatalf("third call = %d, want 429", got)
	}
	if got := call("b"); got != http.StatusNoContent {
		t.Fatalf("other session = %d, want 204", got)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := RateLimit(0, time.Minute)(ok)
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("call %d = %d", i, rec.Code)
		}
	}
}
