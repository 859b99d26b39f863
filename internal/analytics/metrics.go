package analytics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "redirector_scan_events_submitted_total",
		Help: "Scan events accepted by the analytics dispatcher",
	})

	scansDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redirector_scan_events_dropped_total",
		Help: "Scan events discarded before reaching a sink",
	}, []string{"reason"})

	sinkWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "redirector_scan_sink_writes_total",
		Help: "Scan sink write attempts by result",
	}, []string{"result"})

	sinkWriteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "redirector_scan_sink_write_duration_seconds",
		Help:    "Latency of a single scan sink write",
		Buckets: prometheus.DefBuckets,
	})
)

const (
	dropQueueFull = "queue_full"
	dropClosed    = "closed"

	resultOK    = "ok"
	resultError = "error"
	resultPanic = "panic"
)
