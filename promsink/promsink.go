// Package promsink adapts ordr's EventSink to Prometheus metrics: a
// counter per outcome, a histogram for latency, labeled by node name.
package promsink

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ordr-dev/ordr"
)

// Sink is an ordr.EventSink backed by Prometheus counters and a histogram.
// Construct one with New, which registers its metrics against reg; pass the
// same Sink to every Graph.Execute call a process makes so the metrics
// accumulate across runs.
type Sink struct {
	nodeDuration *prometheus.HistogramVec
	nodeTotal    *prometheus.CounterVec
	retriesTotal *prometheus.CounterVec
	jobsTotal    *prometheus.CounterVec

	starts map[string]time.Time
}

// New registers ordr's metrics against reg and returns a ready Sink. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the global
// registry; pass prometheus.DefaultRegisterer-backed registry in
// production.
func New(reg prometheus.Registerer) *Sink {
	factory := promauto.With(reg)
	return &Sink{
		nodeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ordr_node_duration_seconds",
			Help:    "Wall-clock duration of each node's producer invocation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"node"}),
		nodeTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ordr_node_total",
			Help: "Total node producer invocations, by outcome.",
		}, []string{"node", "outcome"}),
		retriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ordr_node_retries_total",
			Help: "Total retry-after-duration outcomes, by node.",
		}, []string{"node"}),
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ordr_jobs_total",
			Help: "Total completed Graph.Execute runs, by terminal status.",
		}, []string{"status"}),
		starts: make(map[string]time.Time),
	}
}

// Emit implements ordr.EventSink.
func (s *Sink) Emit(e ordr.Event) {
	switch e.Kind {
	case ordr.EventNodeStart:
		s.starts[e.NodeName] = time.Now()

	case ordr.EventNodeDone:
		s.observe(e.NodeName, "done")

	case ordr.EventNodeFailed:
		s.observe(e.NodeName, "failed")
		s.jobsTotal.WithLabelValues("failed").Inc()

	case ordr.EventNodePanic:
		s.observe(e.NodeName, "panic")
		s.jobsTotal.WithLabelValues("panic").Inc()

	case ordr.EventNodeRetrying:
		s.retriesTotal.WithLabelValues(e.NodeName).Inc()

	case ordr.EventJobDone:
		s.jobsTotal.WithLabelValues("done").Inc()

	case ordr.EventJobCancelled:
		s.jobsTotal.WithLabelValues("cancelled").Inc()
	}
}

func (s *Sink) observe(node, outcome string) {
	s.nodeTotal.WithLabelValues(node, outcome).Inc()
	if start, ok := s.starts[node]; ok {
		s.nodeDuration.WithLabelValues(node).Observe(time.Since(start).Seconds())
		delete(s.starts, node)
	}
}
