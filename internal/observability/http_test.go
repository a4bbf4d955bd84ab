package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sqlchat/sqlchat/internal/config"
)

func TestTraceMiddlewarePreservesIncomingTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := TraceIDFromContext(r.Context()); got != "trace-1" {
			t.Fatalf("TraceIDFromContext() = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set(traceHeader, "trace-1")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(traceHeader); got != "trace-1" {
		t.Fatalf("trace header = %q", got)
	}
}

func TestTraceMiddlewareGeneratesTraceID(t *testing.T) {
	h := TraceMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if TraceIDFromContext(r.Context()) == "" {
			t.Fatal("expected generated trace id")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Header().Get(traceHeader) == "" {
		t.Fatal("expected X-Trace-ID header")
	}
}

func TestTraceIDContextHelpers(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "abc123")
	if got := TraceIDFromContext(ctx); got != "abc123" {
		t.Fatalf("TraceIDFromContext() = %q", got)
	}
}

func TestLoggingMiddlewareDoesNotPanic(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
}

func TestLoggingMiddlewareRecordsMatchedRoute(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := TraceMiddleware(MetricsMiddleware(LoggingMiddleware(logger)(mux)))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/sessions/abc", nil))

	if !strings.Contains(buf.String(), `"route":"GET /v1/sessions/{id}"`) {
		t.Fatalf("log line = %s", buf.String())
	}
}

func TestRouteLabelFallsBackForUnmatchedRequests(t *testing.T) {
	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/nope", nil)); got != "unmatched" {
		t.Fatalf("routeLabel() = %q", got)
	}
}

func TestNewLoggerJSONIncludesServiceAttributes(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{
		Profile:       config.ProfileTest,
		Service:       config.ServiceConfig{Name: "sqlchat-api"},
		Observability: config.ObservabilityConfig{LogLevel: slog.LevelInfo, LogJSON: true},
	}
	NewLogger(cfg, &buf).Info("hello")
	out := buf.String()
	if !strings.Contains(out, `"service":"sqlchat-api"`) || !strings.Contains(out, `"profile":"test"`) {
		t.Fatalf("log line = %s", out)
	}
}

func TestNewLoggerTextRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Config{
		Profile:       config.ProfileTest,
		Service:       config.ServiceConfig{Name: "sqlchat-api"},
		Observability: config.ObservabilityConfig{LogLevel: slog.LevelWarn},
	}
	logger := NewLogger(cfg, &buf)
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("log output = %q", buf.String())
	}
}
