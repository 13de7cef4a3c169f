package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGetRequestID(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"present", WithRequestID(context.Background(), "req-1"), "req-1"},
		{"missing", context.Background(), ""},
		{"wrong type", context.WithValue(context.Background(), requestIDContextKey, 7), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetRequestID(tt.ctx); got != tt.want {
				t.Errorf("GetRequestID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	t.Run("generates UUID when absent", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("request ID %q is not a UUID: %v", seen, err)
		}
		if rr.Header().Get(RequestIDHeader) != seen {
			t.Errorf("header = %q, context = %q", rr.Header().Get(RequestIDHeader), seen)
		}
	})

	t.Run("keeps caller request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, "caller-id")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if seen != "caller-id" {
			t.Errorf("request ID = %q, want caller-id", seen)
		}
	})

	t.Run("replaces oversized request ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("a", maxRequestIDLength+1))
		handler.ServeHTTP(httptest.NewRecorder(), req)

		if _, err := uuid.Parse(seen); err != nil {
			t.Errorf("expected generated UUID, got %q", seen)
		}
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/abc123", nil)
	req.Header.Set(RequestIDHeader, "log-test")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "http request" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["status"] != float64(http.StatusTeapot) {
		t.Errorf("status = %v, want 418", entry["status"])
	}
	if entry["path"] != "/abc123" {
		t.Errorf("path = %v", entry["path"])
	}
	if entry["request_id"] != "log-test" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	handler := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("store exploded")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/links", nil))

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "internal_error") {
		t.Errorf("body = %s", rr.Body.String())
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allow all", func(t *testing.T) {
		rr := httptest.NewRecorder()
		CORS(nil)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/links", nil))

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin = %q, want *", got)
		}
	})

	t.Run("allowed origin echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links", nil)
		req.Header.Set("Origin", "https://dash.example")
		rr := httptest.NewRecorder()
		CORS([]string{"https://dash.example"})(next).ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://dash.example" {
			t.Errorf("Allow-Origin = %q", got)
		}
	})

	t.Run("other origin not echoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/links", nil)
		req.Header.Set("Origin", "https://evil.example")
		rr := httptest.NewRecorder()
		CORS([]string{"https://dash.example"})(next).ServeHTTP(rr, req)

		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		called := false
		h := CORS(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/links", nil))

		if rr.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rr.Code)
		}
		if called {
			t.Error("next handler should not run for preflight")
		}
	})
}

func TestStatusRecorder(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := NewStatusRecorder(rr)

	if rec.Status() != http.StatusOK {
		t.Errorf("default status = %d, want 200", rec.Status())
	}

	rec.WriteHeader(http.StatusFound)
	if rec.Status() != http.StatusFound {
		t.Errorf("status = %d, want 302", rec.Status())
	}
	if rec.Unwrap() != rr {
		t.Error("Unwrap() did not return the wrapped writer")
	}
}
