package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ledgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_ledger_mutations",
	Help: "Number of stat ledger mutations applied, by operation",
}, []string{"op"})

var ledgerFlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "automod_ledger_flush_duration_sec",
	Help: "Duration of full stat ledger flushes to storage",
})

var ledgerFlushErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_ledger_flush_errors",
	Help: "Number of stat ledger flushes which failed to persist",
})

var ledgerUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "automod_ledger_users",
	Help: "Number of users with a record in the stat ledger",
})
