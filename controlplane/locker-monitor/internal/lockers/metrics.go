package lockers

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Metric names.
	MetricNameLockers         = "locker_monitor_lockers"
	MetricNameReleasable      = "locker_monitor_releasable_lockers"
	MetricNameStaleAuthority  = "locker_monitor_stale_authority_lockers"
	MetricNameFamilies        = "locker_monitor_lineage_families"
	MetricNameLockedAmount    = "locker_monitor_locked_amount"
	MetricNameMissingVaults   = "locker_monitor_missing_vaults"
	MetricNameSlot            = "locker_monitor_slot"
	MetricNameErrors          = "locker_monitor_errors_total"
	MetricNameTickDurationSec = "locker_monitor_tick_duration_seconds"

	// Labels.
	MetricLabelMint      = "mint"
	MetricLabelErrorType = "error_type"

	// Error types.
	MetricErrorTypeGetSlot          = "get_slot"
	MetricErrorTypeGetLockers       = "get_lockers"
	MetricErrorTypeGetVaultBalances = "get_vault_balances"
	MetricErrorTypeDeriveAuthority  = "derive_authority"
)

type Metrics struct {
	Lockers        prometheus.Gauge
	Releasable     prometheus.Gauge
	StaleAuthority prometheus.Gauge
	Families       prometheus.Gauge
	MissingVaults  prometheus.Gauge
	LockedAmount   *prometheus.GaugeVec
	Slot           prometheus.Gauge
	Errors         *prometheus.CounterVec
	TickDuration   prometheus.Histogram
}

// NewMetrics creates the collectors but does not auto-register them.
func NewMetrics() *Metrics {
	return &Metrics{
		Lockers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameLockers,
			Help: "Number of locker accounts",
		}),
		Releasable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameReleasable,
			Help: "Number of lockers whose release date has passed",
		}),
		StaleAuthority: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameStaleAuthority,
			Help: "Number of lockers whose program authority is not derivable from the current owner",
		}),
		Families: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameFamilies,
			Help: "Number of distinct split lineages",
		}),
		MissingVaults: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameMissingVaults,
			Help: "Number of lockers whose vault is missing or not a token account",
		}),
		LockedAmount: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricNameLockedAmount,
				Help: "Total vault balance held by lockers, in base units of the mint",
			},
			[]string{MetricLabelMint},
		),
		Slot: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricNameSlot,
			Help: "Finalized slot observed at the last tick",
		}),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricNameErrors,
				Help: "Number of errors encountered",
			},
			[]string{MetricLabelErrorType},
		),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    MetricNameTickDurationSec,
			Help:    "Duration of a full locker scan",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Register all metrics with the provided registry.
func (m *Metrics) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.Lockers,
		m.Releasable,
		m.StaleAuthority,
		m.Families,
		m.MissingVaults,
		m.LockedAmount,
		m.Slot,
		m.Errors,
		m.TickDuration,
	)
}
