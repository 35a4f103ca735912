// Package hooks implements the lifecycle hook dispatcher.
package hooks

import (
	"log/slog"

	"github.com/jrepp/procpilot/internal/errs"
	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/metrics"
)

// Dispatcher invokes a process's bound hooks for a given phase, synchronously
// and in registration order, on the caller's goroutine (the supervisor's
// monitoring loop). pre_start failures are fatal for that process's startup;
// every other phase logs and continues through the remaining hooks.
type Dispatcher struct {
	logger    *slog.Logger
	collector metrics.Collector
}

// New returns a Dispatcher that logs through logger and records hook
// failures through collector.
func New(logger *slog.Logger, collector metrics.Collector) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	if collector == nil {
		collector = metrics.NewNoopCollector()
	}
	return &Dispatcher{logger: logger, collector: collector}
}

// Dispatch runs every hook bound to p for phase, in order. handlePID is 0
// for pre_start, which runs before the OS handle exists.
func (d *Dispatcher) Dispatch(phase manifest.HookPhase, p *manifest.Process, handlePID int) error {
	for _, fn := range p.HookFunctions[phase] {
		if err := fn(p, handlePID); err != nil {
			d.logger.Error("lifecycle hook failed",
				"process", p.Name, "phase", phase, "error", err)
			d.collector.HookFailure(p.Name, string(phase))

			if phase == manifest.HookPreStart {
				return errs.Wrap(errs.HookFailure, err, "pre_start hook failed for %q", p.Name).
					WithContext("process", p.Name)
			}
		}
	}
	return nil
}
