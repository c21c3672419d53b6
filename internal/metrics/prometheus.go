package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusOnce     sync.Once
	prometheusInstance *PrometheusCollector
)

// PrometheusCollector provides Prometheus metrics for nogo games.
type PrometheusCollector struct {
	registry *prometheus.Registry

	// Game metrics
	movesTotal          *prometheus.CounterVec
	stonesCapturedTotal *prometheus.CounterVec
	illegalMovesTotal   *prometheus.CounterVec
	gamesFinishedTotal  *prometheus.CounterVec
	gamesActive         prometheus.Gauge
	savesTotal          *prometheus.CounterVec
	decisionDuration    *prometheus.HistogramVec

	// MCP Tool metrics
	toolCallsTotal   *prometheus.CounterVec
	toolDurationSecs *prometheus.HistogramVec

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewPrometheusCollector returns the process-wide collector (singleton).
func NewPrometheusCollector() *PrometheusCollector {
	prometheusOnce.Do(func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		prometheusInstance = NewPrometheusCollectorWithRegistry(reg)
	})
	return prometheusInstance
}

// NewPrometheusCollectorWithRegistry registers all metrics on reg.
func NewPrometheusCollectorWithRegistry(reg *prometheus.Registry) *PrometheusCollector {
	factory := promauto.With(reg)
	return &PrometheusCollector{
		registry: reg,

		// Game metrics
		movesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_moves_total",
				Help: "Total number of stones placed",
			},
			[]string{"color"},
		),
		stonesCapturedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_stones_captured_total",
				Help: "Total number of stones captured, by capturing color",
			},
			[]string{"color"},
		),
		illegalMovesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_illegal_moves_total",
				Help: "Total number of rejected moves",
			},
			[]string{"reason"},
		),
		gamesFinishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_games_finished_total",
				Help: "Total number of finished games",
			},
			[]string{"outcome"},
		),
		gamesActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "nogo_games_active",
				Help: "Number of games in progress",
			},
		),
		savesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_saves_total",
				Help: "Total number of save attempts",
			},
			[]string{"status"},
		),
		decisionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nogo_move_decision_duration_seconds",
				Help:    "Time a player took to propose a move",
				Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 5, 15, 60},
			},
			[]string{"kind"},
		),

		// MCP Tool metrics
		toolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_mcp_tool_calls_total",
				Help: "Total number of MCP tool calls",
			},
			[]string{"tool", "status"},
		),
		toolDurationSecs: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nogo_mcp_tool_duration_seconds",
				Help:    "Duration of MCP tool calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),

		// HTTP metrics
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nogo_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nogo_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
}

// Registry is what the /metrics endpoint gathers from.
func (p *PrometheusCollector) Registry() *prometheus.Registry {
	return p.registry
}

// RecordMove records a placed stone and the stones it captured.
func (p *PrometheusCollector) RecordMove(color string, captured int) {
	p.movesTotal.WithLabelValues(color).Inc()
	if captured > 0 {
		p.stonesCapturedTotal.WithLabelValues(color).Add(float64(captured))
	}
}

// RecordIllegalMove records a rejected move. reason is one of "parse",
// "out_of_bounds", "occupied" or "suicide".
func (p *PrometheusCollector) RecordIllegalMove(reason string) {
	p.illegalMovesTotal.WithLabelValues(reason).Inc()
}

// GameStarted marks a game as in progress.
func (p *PrometheusCollector) GameStarted() {
	p.gamesActive.Inc()
}

// RecordGameFinished records the outcome of a game that was started.
func (p *PrometheusCollector) RecordGameFinished(outcome string) {
	p.gamesActive.Dec()
	p.gamesFinishedTotal.WithLabelValues(outcome).Inc()
}

// RecordSave records a save attempt.
func (p *PrometheusCollector) RecordSave(success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.savesTotal.WithLabelValues(status).Inc()
}

// RecordDecision records how long a player took to propose a move.
func (p *PrometheusCollector) RecordDecision(kind string, durationSecs float64) {
	p.decisionDuration.WithLabelValues(kind).Observe(durationSecs)
}

// RecordToolCall records a tool call metric.
func (p *PrometheusCollector) RecordToolCall(tool, status string, durationSecs float64) {
	p.toolCallsTotal.WithLabelValues(tool, status).Inc()
	p.toolDurationSecs.WithLabelValues(tool).Observe(durationSecs)
}

// RecordHTTPRequest records an HTTP request.
func (p *PrometheusCollector) RecordHTTPRequest(method, path, status string, durationSecs float64) {
	p.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	p.httpRequestDuration.WithLabelValues(method, path).Observe(durationSecs)
}
