package tcp

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics, exposed over HTTP by cmd/microtcp via promhttp.Handler(). This
// plays the role the go-tcpinfo/sockstats repo in the retrieval pack plays
// for real kernel sockets: a Prometheus view of TCP connection state, here
// for connections this process's own state machine drives.
var (
	metricSegmentsIn = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microtcp",
		Name:      "segments_in_total",
		Help:      "TCP segments delivered to a connection's state machine.",
	})

	metricSegmentsOut = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microtcp",
		Name:      "segments_out_total",
		Help:      "TCP segments emitted by a connection's state machine.",
	})

	metricBareAcksSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "microtcp",
		Name:      "bare_acks_total",
		Help:      "Bare ACKs sent in response to unacceptable segments.",
	})

	metricConnectionsByState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "microtcp",
		Name:      "connections",
		Help:      "Live connection records, by TCP state.",
	}, []string{"state"})
)
