package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsTotal,
		aiCallsLatencyMs,
		aiPromptTokens,
		aiRetriesTotal,
	)
}

var (
	aiCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_calls_total",
			Help: "Collaborator calls per provider/service and outcome.",
		},
		[]string{"provider", "service", "success"},
	)

	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"provider", "service", "success"},
	)

	aiPromptTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_prompt_tokens",
			Help:    "Estimated prompt tokens per completion request.",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		},
		[]string{"provider"},
	)

	aiRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_retries_total",
			Help: "Retries of transient collaborator failures.",
		},
		[]string{"provider", "service"},
	)
)

// ObserveCall records one collaborator call (service is "completion" or "vision").
func ObserveCall(provider, service string, latencyMs int64, success bool) {
	ok := strconv.FormatBool(success)
	aiCallsTotal.WithLabelValues(norm(provider), norm(service), ok).Inc()
	aiCallsLatencyMs.WithLabelValues(norm(provider), norm(service), ok).Observe(float64(latencyMs))
}

func ObservePromptTokens(provider string, tokens int) {
	aiPromptTokens.WithLabelValues(norm(provider)).Observe(float64(tokens))
}

func IncRetry(provider, service string) {
	aiRetriesTotal.WithLabelValues(norm(provider), norm(service)).Inc()
}
