package editor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gestures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsmdiagram_gestures_total",
		Help: "Editor gestures handled, by gesture",
	}, []string{"gesture"})

	rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsmdiagram_rejections_total",
		Help: "Gestures that ended as a no-op, by reason",
	}, []string{"reason"})

	cascadedEdges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fsmdiagram_cascaded_edges_total",
		Help: "Edges removed because an endpoint node was deleted",
	})

	graphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fsmdiagram_graph_nodes",
		Help: "Nodes in the current graph",
	})

	graphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fsmdiagram_graph_edges",
		Help: "Edges in the current graph",
	})

	commandQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "fsmdiagram_command_queue_depth",
		Help: "Commands waiting for the editor loop",
	})
)
