package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the staking ledger's Prometheus collectors.
type Metrics struct {
	UsersRegistered prometheus.Counter
	AssetsStaked    prometheus.Counter
	AssetsUnstaked  prometheus.Counter
	Claims          prometheus.Counter
	PayoutUnits     prometheus.Counter
	OpDuration      *prometheus.HistogramVec
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stakeyard_users_registered_total",
			Help: "Total number of users registered in the ledger",
		}),
		AssetsStaked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stakeyard_assets_staked_total",
			Help: "Total number of assets admitted into custody",
		}),
		AssetsUnstaked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stakeyard_assets_unstaked_total",
			Help: "Total number of assets returned to their owners",
		}),
		Claims: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stakeyard_claims_total",
			Help: "Total number of successful reward claims",
		}),
		PayoutUnits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "stakeyard_payout_units_total",
			Help: "Total reward paid out, in token base units",
		}),
		OpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stakeyard_operation_duration_seconds",
			Help:    "Latency of ledger operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// ObserveOp records one operation's latency.
func (m *Metrics) ObserveOp(operation string, seconds float64) {
	m.OpDuration.WithLabelValues(operation).Observe(seconds)
}
