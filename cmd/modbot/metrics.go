package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("modbot")

var messagesReceived = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_messages_received",
	Help: "Number of chat messages received from the transport",
})

var messagesFailed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "modbot_messages_failed",
	Help: "Number of chat messages which could not be routed",
})
