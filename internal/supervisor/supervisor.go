// Package supervisor implements the engine that owns process lifecycle:
// dependency-ordered startup with readiness gating, a single-threaded
// poll loop for liveness/restart/stats, and serialized operator commands.
package supervisor

import (
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/jrepp/procpilot/internal/hooks"
	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/metrics"
	"github.com/jrepp/procpilot/internal/plugin"
	"github.com/jrepp/procpilot/internal/stats"
	"github.com/jrepp/procpilot/internal/term"
)

// EngineState is the lifecycle state of the Supervisor itself, distinct
// from any individual process's Status.
type EngineState string

const (
	StateIdle     EngineState = "idle"
	StateRunning  EngineState = "running"
	StateStopping EngineState = "stopping"
)

const defaultPollInterval = 100 * time.Millisecond

// runningEntry pairs a declared process with its live OS handle.
type runningEntry struct {
	process *manifest.Process
	cmd     *procHandle
}

// Supervisor is the single-threaded cooperative engine described in
// spec §4.E/§5: all readiness probes, stats sampling, hook dispatch, and
// termination happen on its monitoring goroutine. Operator commands
// (StartProcess/StopProcess/RestartProcesses) are placed on a
// single-consumer queue drained at the head of each poll tick, so the
// running table is only ever mutated from one goroutine.
type Supervisor struct {
	logger       *slog.Logger
	registry     *plugin.Registry
	dispatcher   *hooks.Dispatcher
	sampler      *stats.Sampler
	terminator   term.Terminator
	collector    metrics.Collector
	pollInterval time.Duration

	mu      sync.Mutex
	state   EngineState
	running []*runningEntry

	manifest *manifest.Manifest

	cmdCh  chan command
	doneCh chan struct{}
}

// command is an operator request serialized onto the poll loop. result and
// stats are channels (not plain fields) so the monitoring goroutine's
// writes are visible to the submitting goroutine regardless of the fact
// that command itself is passed by value over cmdCh — a channel value
// shares its underlying queue across every copy.
type command struct {
	kind   commandKind
	names  []string
	result chan error
	stats  chan *manifest.ProcessStats
}

type commandKind int

const (
	cmdStartProcess commandKind = iota
	cmdStopProcess
	cmdRestartProcesses
	cmdGetRunningProcess
	cmdStopEngine
)

// New constructs a Supervisor. Use Builder for a fluent, defaulted
// construction path.
func New(m *manifest.Manifest, registry *plugin.Registry, opts ...Option) *Supervisor {
	s := &Supervisor{
		logger:       slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})),
		registry:     registry,
		sampler:      stats.NewSampler(),
		terminator:   term.New(),
		collector:    metrics.NewNoopCollector(),
		pollInterval: defaultPollInterval,
		state:        StateIdle,
		manifest:     m,
		cmdCh:        make(chan command, 16),
	}

	for _, opt := range opts {
		opt(s)
	}

	// Built last so it picks up any logger/collector overrides from opts
	// above rather than binding to the pre-option defaults.
	s.dispatcher = hooks.New(s.logger, s.collector)
	return s
}

// State returns the engine's current lifecycle state.
func (s *Supervisor) State() EngineState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done returns a channel closed once the poll loop started by Start has
// returned to idle. It is nil until Start has been called.
func (s *Supervisor) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doneCh
}
