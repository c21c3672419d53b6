package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmmcquay/nogo/internal/logging"
	"github.com/dmmcquay/nogo/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*Checker, *metrics.PrometheusCollector, http.Handler) {
	t.Helper()
	checker := NewChecker(logging.NewNopLogger(), "nogo", "1.0.0")
	collector := metrics.NewPrometheusCollectorWithRegistry(prometheus.NewRegistry())
	return checker, collector, NewRouter(checker, collector)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	checker, _, router := newTestRouter(t)
	checker.RegisterCheck("broken", func(ctx context.Context) error { return errors.New("down") })

	rec := get(t, router, "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "nogo", resp.Service)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Empty(t, resp.Components, "liveness does not run checks")
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]error
		wantCode   int
		wantStatus Status
	}{
		{"no checks", nil, http.StatusOK, StatusHealthy},
		{"all healthy", map[string]error{"game": nil, "metrics": nil}, http.StatusOK, StatusHealthy},
		{"one failing", map[string]error{"game": nil, "metrics": errors.New("gather failed")}, http.StatusServiceUnavailable, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker, _, router := newTestRouter(t)
			for name, err := range tt.checks {
				err := err
				checker.RegisterCheck(name, func(ctx context.Context) error { return err })
			}

			rec := get(t, router, "/ready")
			assert.Equal(t, tt.wantCode, rec.Code)

			var resp HealthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Len(t, resp.Components, len(tt.checks))
		})
	}
}

func TestCheckHealthOrdersComponents(t *testing.T) {
	checker := NewChecker(logging.NewNopLogger(), "nogo", "")
	checker.RegisterCheck("zeta", func(ctx context.Context) error { return nil })
	checker.RegisterCheck("alpha", func(ctx context.Context) error { return errors.New("no") })

	resp := checker.CheckHealth(context.Background())
	require.Len(t, resp.Components, 2)
	assert.Equal(t, "alpha", resp.Components[0].Name)
	assert.Equal(t, StatusUnhealthy, resp.Components[0].Status)
	assert.Equal(t, "no", resp.Components[0].Message)
	assert.Equal(t, "zeta", resp.Components[1].Name)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestMetricsEndpoint(t *testing.T) {
	_, collector, router := newTestRouter(t)
	collector.RecordMove("black", 2)

	rec := get(t, router, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `nogo_moves_total{color="black"} 1`)
	assert.Contains(t, string(body), `nogo_stones_captured_total{color="black"} 2`)
}

func TestPrometheusMiddlewareLabels(t *testing.T) {
	_, collector, router := newTestRouter(t)

	get(t, router, "/health")
	get(t, router, "/health")
	rec := get(t, router, "/no/such/path")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, f := range families {
		if f.GetName() != "nogo_http_requests_total" {
			continue
		}
		for _, m := range f.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			counts[labels["path"]+" "+labels["status"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 2.0, counts["/health 200"])
	assert.Equal(t, 1.0, counts["unmatched 404"])
}

func TestHTTPServerStartStop(t *testing.T) {
	checker := NewChecker(logging.NewNopLogger(), "nogo", "1.0.0")
	collector := metrics.NewPrometheusCollectorWithRegistry(prometheus.NewRegistry())

	// Use a random port to avoid conflicts
	server := NewHTTPServer("127.0.0.1:0", logging.NewNopLogger(), checker, collector)
	require.NoError(t, server.Start())

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, server.Stop(ctx))

	count, err := testutil.GatherAndCount(collector.Registry(), "nogo_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHTTPServerStartBadAddr(t *testing.T) {
	checker := NewChecker(logging.NewNopLogger(), "nogo", "")
	collector := metrics.NewPrometheusCollectorWithRegistry(prometheus.NewRegistry())
	server := NewHTTPServer("not-an-address", logging.NewNopLogger(), checker, collector)
	assert.Error(t, server.Start())
}
