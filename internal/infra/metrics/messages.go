package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		messagesHandledTotal,
		messagesDuplicateTotal,
		replyLatencyMs,
	)
}

var (
	messagesHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_handled_total",
			Help: "Inbound messages per channel, route and outcome.",
		},
		[]string{"channel", "route", "failed"},
	)

	messagesDuplicateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_duplicate_total",
			Help: "Provider redeliveries that were answered already.",
		},
		[]string{"channel"},
	)

	replyLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reply_latency_ms",
			Help:    "Time from receiving a message to producing its reply.",
			Buckets: []float64{1, 5, 25, 100, 400, 1600, 5000, 15000, 30000},
		},
		[]string{"route"},
	)
)

func IncMessage(channel, route string, failed bool) {
	messagesHandledTotal.WithLabelValues(norm(channel), norm(route), strconv.FormatBool(failed)).Inc()
}

func IncDuplicate(channel string) { messagesDuplicateTotal.WithLabelValues(norm(channel)).Inc() }

func ObserveReply(route string, latencyMs int64) {
	replyLatencyMs.WithLabelValues(norm(route)).Observe(float64(latencyMs))
}
