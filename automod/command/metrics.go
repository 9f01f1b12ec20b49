package command

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var commandCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "automod_command_count",
	Help: "Number of chat commands handled, by command and status",
}, []string{"command", "status"})
