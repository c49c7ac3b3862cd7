package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusTeapot)
	})

	handler := RequestLogger(logger)(next)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/employees/emp-1/status", nil))

	if recorder.Code != http.StatusTeapot {
		t.Fatalf("status = %d, want passthrough 418", recorder.Code)
	}
	if !sawLogger {
		t.Errorf("expected a request scoped logger in the context")
	}
	output := buf.String()
	if !strings.Contains(output, "request started") || !strings.Contains(output, "request completed") {
		t.Errorf("log output missing request lifecycle entries: %s", output)
	}
	if !strings.Contains(output, "/employees/emp-1/status") {
		t.Errorf("log output missing request path: %s", output)
	}
}

type capturedRequest struct {
	method string
	route  string
	status int
}

type captureMetrics struct {
	requests []capturedRequest
}

func (m *captureMetrics) ObserveRequest(method, route string, status int, _ time.Duration) {
	m.requests = append(m.requests, capturedRequest{method: method, route: route, status: status})
}

func TestRecordMetrics(t *testing.T) {
	t.Parallel()

	metrics := &captureMetrics{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	handler := RecordMetrics(metrics)(next)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/employees/emp-1/clock-out", nil))

	if len(metrics.requests) != 1 {
		t.Fatalf("observed %d requests, want 1", len(metrics.requests))
	}
	got := metrics.requests[0]
	if got.method != http.MethodPost {
		t.Errorf("method = %q, want POST", got.method)
	}
	if got.route != "/employees/:id/clock-out" {
		t.Errorf("route = %q, want /employees/:id/clock-out", got.route)
	}
	if got.status != http.StatusConflict {
		t.Errorf("status = %d, want 409", got.status)
	}
}

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		path string
		want string
	}{
		{path: "/employees", want: "/employees"},
		{path: "/employees/emp-1", want: "/employees/:id"},
		{path: "/employees/emp-1/", want: "/employees/:id"},
		{path: "/employees/emp-1/clock-in", want: "/employees/:id/clock-in"},
		{path: "/employees/emp-1/totals", want: "/employees/:id/totals"},
		{path: "/healthz", want: "/healthz"},
		{path: "/metrics", want: "/metrics"},
	}
	for _, tc := range cases {
		if got := routeLabel(tc.path); got != tc.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
