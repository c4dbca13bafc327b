package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(redemptionsTotal, redemptionDuration)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "code_redemptions_total",
			Help: "Redemption attempts by outcome and effect kind.",
		},
		[]string{"result", "kind"}, // result: 'granted', 'expired', 'exhausted', ...
	)

	redemptionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "code_redemption_duration_seconds",
			Help:    "Time spent inside the redemption transaction.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func IncRedemption(result, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	redemptionsTotal.WithLabelValues(norm(result), norm(kind)).Inc()
}

func ObserveRedemptionSeconds(s float64) { redemptionDuration.Observe(s) }
