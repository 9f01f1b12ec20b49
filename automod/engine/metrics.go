package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var queueLength = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "automod_queue_length",
	Help: "Number of messages waiting for classification",
})

var queueEnqueued = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_queue_enqueued",
	Help: "Number of messages accepted into the classification queue",
})

var queueRejected = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_queue_rejected",
	Help: "Number of messages rejected because the queue was shut down",
})

var queueItemErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_queue_item_errors",
	Help: "Number of queue items which failed classification outright",
})

var queueSpacingWait = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "automod_queue_spacing_wait_sec",
	Help:    "Time the drain loop slept to keep classification calls spaced",
	Buckets: prometheus.LinearBuckets(0.1, 0.1, 12),
})

var outcomeProcessDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "automod_outcome_duration_sec",
	Help: "Duration of processing a classification outcome",
}, []string{"category"})

var outcomeProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_outcome_processed",
	Help: "Number of classification outcomes processed",
}, []string{"category"})

var outcomeErrorCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "automod_outcome_errors",
	Help: "Number of classification outcomes which failed processing",
})

var remediationStepCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_remediation_steps",
	Help: "Number of remediation steps attempted, by step and status",
}, []string{"step", "status"})

var routeCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_route_count",
	Help: "Number of inbound messages, by routing decision",
}, []string{"route"})

var notifyCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_notify_count",
	Help: "Number of operator notifications, by status",
}, []string{"status"})
