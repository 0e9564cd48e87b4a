package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID_GeneratesWhenAbsent(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if seen == "" {
		t.Fatal("expected a request ID in the handler context")
	}
	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("expected a valid UUID, got %q: %v", seen, err)
	}
	if got := w.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q does not match context ID %q", got, seen)
	}
}

func TestRequestID_PropagatesCallerID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue", nil)
	req.Header.Set(RequestIDHeader, "caller-req-42")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if seen != "caller-req-42" {
		t.Errorf("expected caller ID in context, got %q", seen)
	}
	if got := w.Header().Get(RequestIDHeader); got != "caller-req-42" {
		t.Errorf("expected caller ID echoed in response, got %q", got)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		id := w.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("expected a request ID in the response")
		}
		if ids[id] {
			t.Errorf("duplicate request ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestGetRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-789")
	if got := GetRequestID(ctx); got != "req-789" {
		t.Errorf("expected %q, got %q", "req-789", got)
	}

	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("expected empty string without an ID, got %q", got)
	}
}
