package supervisor

import (
	"log/slog"
	"time"

	"github.com/jrepp/procpilot/internal/metrics"
	"github.com/jrepp/procpilot/internal/stats"
	"github.com/jrepp/procpilot/internal/term"
)

// Option configures a Supervisor at construction.
type Option func(*Supervisor)

// WithLogger overrides the default JSON stdout logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithPollInterval overrides the default 100ms poll loop interval.
func WithPollInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.pollInterval = d
	}
}

// WithMetricsCollector sets the metrics collector.
func WithMetricsCollector(c metrics.Collector) Option {
	return func(s *Supervisor) {
		s.collector = c
	}
}

// WithTerminator overrides the platform-default process-tree terminator,
// primarily for tests.
func WithTerminator(t term.Terminator) Option {
	return func(s *Supervisor) {
		s.terminator = t
	}
}

// WithSampler overrides the default gopsutil-backed stats sampler,
// primarily for tests.
func WithSampler(sampler *stats.Sampler) Option {
	return func(s *Supervisor) {
		s.sampler = sampler
	}
}
