package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backtestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quantbench",
		Name:      "backtests_total",
		Help:      "Completed backtest requests by strategy and outcome.",
	}, []string{"strategy", "status"})

	backtestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quantbench",
		Name:      "backtest_duration_seconds",
		Help:      "Wall-clock time to serve a backtest request, including data fetch.",
		Buckets:   prometheus.DefBuckets,
	})
)
