package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var SagaPhaseTransitionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cimkeys",
		Subsystem: "saga",
		Name:      "phase_transitions_total",
		Help:      "Total number of saga phase transitions, by saga kind and phase.",
	},
	[]string{"saga", "phase"},
)

var SagaCompletedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cimkeys",
		Subsystem: "saga",
		Name:      "completed_total",
		Help:      "Total number of sagas that reached Completed, by saga kind.",
	},
	[]string{"saga"},
)

var SagaFailedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cimkeys",
		Subsystem: "saga",
		Name:      "failed_total",
		Help:      "Total number of sagas that reached Failed, by saga kind and failed phase.",
	},
	[]string{"saga", "failed_phase"},
)

var SagaCompensationStepsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cimkeys",
		Subsystem: "saga",
		Name:      "compensation_steps_total",
		Help:      "Total number of compensation steps run, by saga kind and step.",
	},
	[]string{"saga", "step"},
)

var GraphEntitiesTotal = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "cimkeys",
		Subsystem: "graph",
		Name:      "entities_total",
		Help:      "Current number of entities in the graph projection.",
	},
)

var GraphRelationsTotal = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "cimkeys",
		Subsystem: "graph",
		Name:      "relations_total",
		Help:      "Current number of relations in the graph projection.",
	},
)

var GraphVersion = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "cimkeys",
		Subsystem: "graph",
		Name:      "version",
		Help:      "Current version (applied event count) of the graph projection.",
	},
)

var EnvelopesPublishedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "cimkeys",
		Subsystem: "envelope",
		Name:      "published_total",
		Help:      "Total number of envelopes published, by aggregate.",
	},
	[]string{"aggregate"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "cimkeys",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds, by method, route, and status.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// All returns every cim-keys-sub002 metric for registration.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		SagaPhaseTransitionsTotal,
		SagaCompletedTotal,
		SagaFailedTotal,
		SagaCompensationStepsTotal,
		GraphEntitiesTotal,
		GraphRelationsTotal,
		GraphVersion,
		EnvelopesPublishedTotal,
		HTTPRequestDuration,
	}
}

// NewRegistry creates a Prometheus registry with Go/process collectors
// plus every metric returned by All.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, c := range All() {
		reg.MustRegister(c)
	}
	return reg
}
