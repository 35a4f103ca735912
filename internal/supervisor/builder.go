package supervisor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/metrics"
	"github.com/jrepp/procpilot/internal/plugin"
)

// Builder provides a fluent interface for constructing a Supervisor.
//
// Usage:
//
//	sup, err := supervisor.NewBuilder(m).
//	    WithPollInterval(50 * time.Millisecond).
//	    WithPlugins(myPlugin).
//	    Build()
type Builder struct {
	m        *manifest.Manifest
	registry *plugin.Registry
	logger   *slog.Logger
	opts     []Option
	plugins  []plugin.Plugin
	err      error
}

// NewBuilder creates a Builder for manifest m with sensible defaults:
// a JSON stdout logger, the built-in readiness probes registered, and a
// 100ms poll interval.
func NewBuilder(m *manifest.Manifest) *Builder {
	if m == nil {
		return &Builder{err: fmt.Errorf("manifest cannot be nil")}
	}
	return &Builder{m: m}
}

// WithLogger overrides the default logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if b.err != nil {
		return b
	}
	b.logger = logger
	b.opts = append(b.opts, WithLogger(logger))
	return b
}

// WithPollInterval overrides the default poll interval.
func (b *Builder) WithPollInterval(d time.Duration) *Builder {
	if b.err != nil {
		return b
	}
	if d <= 0 {
		b.err = fmt.Errorf("poll interval must be positive")
		return b
	}
	b.opts = append(b.opts, WithPollInterval(d))
	return b
}

// WithMetricsCollector sets the metrics collector.
func (b *Builder) WithMetricsCollector(c metrics.Collector) *Builder {
	if b.err != nil {
		return b
	}
	b.opts = append(b.opts, WithMetricsCollector(c))
	return b
}

// WithPlugins registers additional plugins beyond the built-in readiness
// strategies, which are always registered.
func (b *Builder) WithPlugins(plugins ...plugin.Plugin) *Builder {
	if b.err != nil {
		return b
	}
	b.plugins = append(b.plugins, plugins...)
	return b
}

// Build validates the accumulated configuration and returns a Supervisor
// with its plugin registry populated.
func (b *Builder) Build() (*Supervisor, error) {
	if b.err != nil {
		return nil, b.err
	}

	registry := plugin.NewRegistry(b.logger)
	registry.RegisterBuiltins(b.m)
	if len(b.plugins) > 0 {
		registry.Register(b.m, b.plugins...)
	}

	return New(b.m, registry, b.opts...), nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Supervisor {
	sup, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build supervisor: %v", err))
	}
	return sup
}
