package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

func TestLogger_SetsRequestID(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/code", nil))

	if rr.Header().Get("X-Request-Id") == "" {
		t.Error("X-Request-Id header not set")
	}
	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
}

func TestLogger_UniqueRequestIDs(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rr.Header().Get("X-Request-Id")
		if seen[id] {
			t.Fatalf("request ID %q repeated", id)
		}
		seen[id] = true
	}
}

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()

	r := chi.NewRouter()
	r.Use(Metrics(reg))
	r.Get("/v1/code/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Two different IDs must land on the same label value.
	for _, path := range []string{"/v1/code/aaa", "/v1/code/bbb"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	found := false
	for _, fam := range families {
		if fam.GetName() != "codevault_http_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" {
					found = true
					if got := label.GetValue(); !strings.Contains(got, "{id}") {
						t.Errorf("path label = %q, want the route pattern", got)
					}
					if got := m.GetCounter().GetValue(); got != 2 {
						t.Errorf("counter = %v, want 2", got)
					}
				}
			}
		}
	}
	if !found {
		t.Fatal("codevault_http_requests_total not found in registry")
	}

	// The duration histogram observed the same requests.
	for _, fam := range families {
		if fam.GetName() == "codevault_http_request_duration_seconds" {
			if got := fam.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
				t.Errorf("histogram sample count = %d, want 2", got)
			}
			return
		}
	}
	t.Error("codevault_http_request_duration_seconds not found in registry")
}
