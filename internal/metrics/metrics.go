package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch and leaderboard counters. Endpoint labels use the pool position,
// not the URL, so provider keys never reach the metrics surface.

var (
	FetchAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roaster",
		Subsystem: "fetcher",
		Name:      "attempts_total",
		Help:      "RPC attempts by endpoint position and outcome",
	}, []string{"endpoint", "outcome"})

	FetchResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roaster",
		Subsystem: "fetcher",
		Name:      "results_total",
		Help:      "Wallet fetches by final outcome",
	}, []string{"outcome"})

	FetchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "roaster",
		Subsystem: "fetcher",
		Name:      "fetch_duration_seconds",
		Help:      "End-to-end wallet fetch duration including retries",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	LeaderboardSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roaster",
		Subsystem: "leaderboard",
		Name:      "submissions_total",
		Help:      "Accepted leaderboard submissions",
	})

	LeaderboardRotations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roaster",
		Subsystem: "leaderboard",
		Name:      "rotations_total",
		Help:      "Hour window rollovers observed on read",
	})

	StoreErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "roaster",
		Subsystem: "store",
		Name:      "errors_total",
		Help:      "Blob store failures swallowed by degradation, by operation",
	}, []string{"operation"})

	CASConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "roaster",
		Subsystem: "store",
		Name:      "cas_conflicts_total",
		Help:      "Optimistic update conflicts retried during atomic submit",
	})
)
