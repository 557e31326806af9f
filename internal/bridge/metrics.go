package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var framesDropped = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fsmdiagram_bridge_frames_dropped_total",
	Help: "Queued messages discarded because a renderer fell behind",
})
