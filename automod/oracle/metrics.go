package oracle

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var oracleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "automod_oracle_duration_sec",
	Help:    "Duration of classification oracle calls",
	Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
})

var oracleCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_oracle_count",
	Help: "Number of classifications, by how they resolved",
}, []string{"status"})

var oracleDegraded = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_oracle_degraded",
	Help: "Number of classifications which fell back to Plain because the oracle failed",
})

var oracleCategory = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_oracle_category",
	Help: "Number of classifications per resulting category",
}, []string{"category"})
