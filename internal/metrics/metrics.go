// Package metrics exposes operational counters through Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsIngested counts observations applied to a window, by protocol.
	PacketsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "packets_ingested_total",
		Help:      "Packet observations applied to the live window.",
	}, []string{"protocol"})

	// PacketsDiscarded counts observations rejected as not IP-level.
	PacketsDiscarded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "packets_discarded_total",
		Help:      "Packet observations discarded as not IP-level.",
	})

	// PacketsDropped counts observations dropped because ingest was saturated.
	PacketsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "packets_dropped_total",
		Help:      "Packet observations dropped because the ingest queue was full.",
	})

	WindowsEmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "windows_emitted_total",
		Help:      "Windows rolled and encoded.",
	})

	WindowPackets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gonw",
		Name:      "last_window_packets",
		Help:      "Packet count of the most recently closed window.",
	})

	WriterErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "writer_errors_total",
		Help:      "Failed window writes, by writer.",
	}, []string{"writer"})

	ResultsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "results_received_total",
		Help:      "Classification lines read back from the link.",
	})

	TransportReadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gonw",
		Name:      "transport_read_errors_total",
		Help:      "Non-timeout errors reading from the link.",
	})
)
