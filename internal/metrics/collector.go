// Package metrics exposes the supervisor's Prometheus instrumentation.
package metrics

import "time"

// Collector records supervisor events. A no-op implementation is the
// default; NewPrometheusCollector wires real instrumentation.
type Collector interface {
	ProcessStateTransition(name, fromStatus, toStatus string)
	ProcessRestart(name string)
	ProcessSpawnDuration(name string, d time.Duration, err error)
	TerminationDuration(name string, d time.Duration)
	ReadyProbeResult(name, strategy string, ok bool)
	HookFailure(name string, phase string)
	StatsHandlerFailure(handler string)
}

type noopCollector struct{}

func (noopCollector) ProcessStateTransition(name, fromStatus, toStatus string)   {}
func (noopCollector) ProcessRestart(name string)                                {}
func (noopCollector) ProcessSpawnDuration(name string, d time.Duration, err error) {}
func (noopCollector) TerminationDuration(name string, d time.Duration)           {}
func (noopCollector) ReadyProbeResult(name, strategy string, ok bool)            {}
func (noopCollector) HookFailure(name string, phase string)                     {}
func (noopCollector) StatsHandlerFailure(handler string)                        {}

// NewNoopCollector returns a Collector that discards every event.
func NewNoopCollector() Collector { return noopCollector{} }
