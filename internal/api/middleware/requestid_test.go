package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/plantcopilot/plantcopilot/internal/api/ctxkeys"
)

func TestRequestID_AssignsAndEchoes(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(ctxkeys.RequestID).(string)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Fatal("expected a request id in context")
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected header to echo context id %q, got %q", seen, rec.Header().Get("X-Request-ID"))
	}
}

func TestRequestID_HonorsCallerSupplied(t *testing.T) {
	t.Parallel()

	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(ctxkeys.RequestID).(string)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "trace-42" {
		t.Errorf("expected caller id preserved, got %q", seen)
	}
}

func TestLogger_CapturesStatus(t *testing.T) {
	t.Parallel()

	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status passthrough, got %d", rec.Code)
	}
}
