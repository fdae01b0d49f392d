// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueriesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_queries_total",
			Help: "Total number of queries processed by endpoint",
		},
		[]string{"endpoint", "status"},
	)

	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_tool_invocations_total",
			Help: "Total number of tool invocations",
		},
		[]string{"tool", "status"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "assistant_pipeline_duration_seconds",
			Help: "Duration of the full query pipeline in seconds",
		},
		[]string{"endpoint"},
	)

	GenerationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_generation_failures_total",
			Help: "Total number of generation engine failures",
		},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "assistant_sessions_active",
			Help: "Number of live conversation sessions",
		},
	)
)
