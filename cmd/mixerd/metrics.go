// metrics.go - Prometheus metrics for the mixer daemon
package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	depositsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixerd_deposits_total",
			Help: "Total number of deposit calls by outcome",
		},
		[]string{"outcome"},
	)

	withdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mixerd_withdrawals_total",
			Help: "Total number of withdrawal calls by outcome",
		},
		[]string{"outcome"},
	)

	treeSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mixerd_tree_leaves",
		Help: "Number of commitments in the accumulator",
	})

	spentNullifiers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mixerd_spent_nullifiers",
		Help: "Number of recorded nullifiers",
	})

	poolAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mixerd_pool_available",
			Help: "Distributable balance per denomination",
		},
		[]string{"denomination"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mixerd_request_duration_seconds",
			Help:    "Request handling duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	snapshotFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mixerd_snapshot_failures_total",
		Help: "Total number of failed state snapshot writes",
	})
)
