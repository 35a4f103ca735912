package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements Collector using Prometheus metrics,
// adapted from the procmgr package's state-transition/duration/error
// instrumentation to the supervisor's process/restart/hook/stats vocabulary.
type PrometheusCollector struct {
	stateTransitions *prometheus.CounterVec
	spawnDuration    *prometheus.HistogramVec
	terminationDur   *prometheus.HistogramVec
	restarts         *prometheus.CounterVec
	readyProbes      *prometheus.CounterVec
	hookFailures     *prometheus.CounterVec
	statsFailures    *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewPrometheusCollector creates a Prometheus-backed Collector registered
// under namespace (defaults to "procpilot").
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	if namespace == "" {
		namespace = "procpilot"
	}

	c := &PrometheusCollector{registry: prometheus.NewRegistry()}

	c.stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_state_transitions_total",
			Help:      "Total number of process state transitions",
		},
		[]string{"process", "from_state", "to_state"},
	)

	c.spawnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_spawn_duration_seconds",
			Help:      "Duration of process spawn operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"process", "status"},
	)

	c.terminationDur = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "process_termination_duration_seconds",
			Help:      "Duration of process termination operations",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"process"},
	)

	c.restarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "process_restarts_total",
			Help:      "Total number of process restarts",
		},
		[]string{"process"},
	)

	c.readyProbes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ready_probe_results_total",
			Help:      "Total number of readiness probe outcomes",
		},
		[]string{"process", "strategy", "result"},
	)

	c.hookFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hook_failures_total",
			Help:      "Total number of lifecycle hook failures",
		},
		[]string{"process", "phase"},
	)

	c.statsFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_handler_failures_total",
			Help:      "Total number of stats handler failures",
		},
		[]string{"handler"},
	)

	c.registry.MustRegister(
		c.stateTransitions,
		c.spawnDuration,
		c.terminationDur,
		c.restarts,
		c.readyProbes,
		c.hookFailures,
		c.statsFailures,
	)

	return c
}

func (c *PrometheusCollector) ProcessStateTransition(name, fromStatus, toStatus string) {
	c.stateTransitions.WithLabelValues(name, fromStatus, toStatus).Inc()
}

func (c *PrometheusCollector) ProcessRestart(name string) {
	c.restarts.WithLabelValues(name).Inc()
}

func (c *PrometheusCollector) ProcessSpawnDuration(name string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.spawnDuration.WithLabelValues(name, status).Observe(d.Seconds())
}

func (c *PrometheusCollector) TerminationDuration(name string, d time.Duration) {
	c.terminationDur.WithLabelValues(name).Observe(d.Seconds())
}

func (c *PrometheusCollector) ReadyProbeResult(name, strategy string, ok bool) {
	result := "success"
	if !ok {
		result = "timeout"
	}
	c.readyProbes.WithLabelValues(name, strategy, result).Inc()
}

func (c *PrometheusCollector) HookFailure(name string, phase string) {
	c.hookFailures.WithLabelValues(name, phase).Inc()
}

func (c *PrometheusCollector) StatsHandlerFailure(handler string) {
	c.statsFailures.WithLabelValues(handler).Inc()
}

// Registry returns the Prometheus registry for HTTP handler setup.
func (c *PrometheusCollector) Registry() *prometheus.Registry {
	return c.registry
}

var _ Collector = (*PrometheusCollector)(nil)
