package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionsActive,
		sessionTurnsEvictedTotal,
		sessionsExpiredTotal,
		sessionResetsTotal,
	)
}

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of live in-memory conversation sessions.",
		},
	)

	sessionTurnsEvictedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_turns_evicted_total",
			Help: "Turns dropped from the head of a conversation window.",
		},
	)

	sessionsExpiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Sessions dropped by the store, by reason.",
		},
		[]string{"reason"}, // idle, capacity
	)

	sessionResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "session_resets_total",
			Help: "User-issued conversation resets.",
		},
	)
)

func SetActiveSessions(n int) { sessionsActive.Set(float64(n)) }

func AddTurnsEvicted(n int) {
	if n > 0 {
		sessionTurnsEvictedTotal.Add(float64(n))
	}
}

func IncSessionExpired(reason string) { sessionsExpiredTotal.WithLabelValues(norm(reason)).Inc() }

func IncSessionReset() { sessionResetsTotal.Inc() }
