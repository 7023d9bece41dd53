package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameBuildInfo = "locker_monitor_build_info"

	// Labels.
	MetricLabelVersion = "version"
	MetricLabelCommit  = "commit"
	MetricLabelDate    = "date"
)

var (
	MetricBuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameBuildInfo,
			Help: "Build information of the locker monitor",
		},
		[]string{MetricLabelVersion, MetricLabelCommit, MetricLabelDate},
	)
)
