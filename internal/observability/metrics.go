package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	SessionEvents   *prometheus.CounterVec
	StageOutcomes   *prometheus.CounterVec
	ProviderErrors  *prometheus.CounterVec
	StageLatency    *prometheus.HistogramVec
	ArtifactSeconds prometheus.Histogram
	WSMessages      *prometheus.CounterVec

	// Stages keeps a rolling latency window for the stats endpoint.
	Stages *StageWindow
}

// NewMetrics registers instruments on reg, or the default registerer when reg is nil.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of interpretation sessions currently running.",
		}),
		SessionEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Session events by type.",
		}, []string{"event"}),
		StageOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_outcomes_total",
			Help:      "Pipeline stage results by stage and status (ok, degraded, failed).",
		}, []string{"stage", "status"}),
		ProviderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_errors_total",
			Help:      "Provider errors by provider and code.",
		}, []string{"provider", "code"}),
		StageLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_latency_ms",
			Help:      "Pipeline stage latency in milliseconds.",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 4000, 8000, 15000, 30000, 60000},
		}, []string{"stage"}),
		ArtifactSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "artifact_audio_seconds",
			Help:      "Playback length of assembled artifacts.",
			Buckets:   []float64{5, 15, 30, 60, 90, 120, 180, 300},
		}),
		WSMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		Stages: NewStageWindow(256),
	}
}

// ObserveStage records one stage result in the counters, histogram and window.
func (m *Metrics) ObserveStage(stage, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageOutcomes.WithLabelValues(stage, status).Inc()
	ms := float64(d.Microseconds()) / 1000
	m.StageLatency.WithLabelValues(stage).Observe(ms)
	m.Stages.Observe(stage, ms)
	if status != "ok" {
		m.Stages.ObserveIndicator(stage + "_" + status)
	}
}

func (m *Metrics) ObserveArtifact(d time.Duration) {
	if m == nil {
		return
	}
	m.ArtifactSeconds.Observe(d.Seconds())
}

func (m *Metrics) Event(name string) {
	if m == nil {
		return
	}
	m.SessionEvents.WithLabelValues(name).Inc()
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor serves metrics from a specific gatherer.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
