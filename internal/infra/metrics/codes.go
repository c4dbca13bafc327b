package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(accessCodesByState, accessCodesDrift, accessCodesCreatedTotal)
}

var (
	accessCodesByState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "access_codes",
			Help: "Access codes grouped by lifecycle state.",
		},
		[]string{"state"}, // 'active', 'disabled', 'expired', 'exhausted'
	)

	accessCodesDrift = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "access_codes_usage_drift",
			Help: "Codes whose use counter disagrees with the redemption ledger.",
		},
	)

	accessCodesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "access_codes_created_total",
			Help: "Access codes created, by effect kind.",
		},
		[]string{"kind"},
	)
)

// SetCodeStates replaces the per-state gauge. States missing from counts are reset to zero.
func SetCodeStates(counts map[string]int, states ...string) {
	for _, s := range states {
		accessCodesByState.WithLabelValues(norm(s)).Set(float64(counts[s]))
	}
}

func SetUsageDrift(n int) { accessCodesDrift.Set(float64(n)) }

func AddCodesCreated(kind string, n int) {
	accessCodesCreatedTotal.WithLabelValues(norm(kind)).Add(float64(n))
}
