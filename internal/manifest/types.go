// Package manifest defines the declarative process model and its validators.
package manifest

import (
	"path/filepath"
	"sync"
)

// Status is the runtime lifecycle state of a managed process, mutated only
// by the supervisor's monitoring loop.
type Status string

const (
	StatusInitializing Status = "INITIALIZING"
	StatusStarting      Status = "STARTING"
	StatusReady         Status = "READY"
	StatusRunning       Status = "RUNNING"
	StatusStopping      Status = "STOPPING"
	StatusStopped       Status = "STOPPED"
	StatusFailed        Status = "FAILED"
)

// ShutdownStrategy governs what the supervisor does when a child exits
// on its own.
type ShutdownStrategy string

const (
	ShutdownRestart          ShutdownStrategy = "restart"
	ShutdownDoNotRestart     ShutdownStrategy = "do_not_restart"
	ShutdownEverything       ShutdownStrategy = "shutdown_everything"
)

// HookPhase identifies a point in a process's lifecycle at which hooks fire.
type HookPhase string

const (
	HookPreStart   HookPhase = "pre_start"
	HookPostStart  HookPhase = "post_start"
	HookOnShutdown HookPhase = "on_shutdown"
	HookOnRestart  HookPhase = "on_restart"
)

const defaultReadyTimeoutSec = 10.0

// RuntimeInfo carries the last-sampled resource usage for a process plus
// the running maximum observed across its lifetime. The max fields only
// ever move upward; they are never reset by a crash-restart.
type RuntimeInfo struct {
	mu sync.Mutex

	MemoryUsageMB      float64
	CPUUsagePercent    float64
	MaxMemoryUsageMB   float64
	MaxCPUUsagePercent float64
}

// RecordMemory sets the instantaneous memory sample and advances the
// running maximum if exceeded.
func (r *RuntimeInfo) RecordMemory(mb float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.MemoryUsageMB = mb
	if mb > r.MaxMemoryUsageMB {
		r.MaxMemoryUsageMB = mb
	}
}

// RecordCPU sets the instantaneous CPU percent sample and advances the
// running maximum if exceeded.
func (r *RuntimeInfo) RecordCPU(pct float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.CPUUsagePercent = pct
	if pct > r.MaxCPUUsagePercent {
		r.MaxCPUUsagePercent = pct
	}
}

// Snapshot returns the current readings and their running maxima, safe to
// call concurrently with RecordMemory/RecordCPU. It returns plain values
// rather than a RuntimeInfo so callers never copy the embedded mutex.
func (r *RuntimeInfo) Snapshot() (memoryMB, cpuPercent, maxMemoryMB, maxCPUPercent float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.MemoryUsageMB, r.CPUUsagePercent, r.MaxMemoryUsageMB, r.MaxCPUUsagePercent
}

// Process is a single declared entity in a manifest: its static
// configuration plus the supervisor-owned runtime fields.
type Process struct {
	Name             string            `yaml:"name" json:"name"`
	Path             string            `yaml:"path" json:"path"`
	Args             []string          `yaml:"args" json:"args"`
	Env              map[string]string `yaml:"env" json:"env"`
	WorkingDirectory string            `yaml:"working_directory" json:"working_directory"`
	TimeoutSec       float64           `yaml:"timeout" json:"timeout"`
	ShutdownStrategy ShutdownStrategy  `yaml:"shutdown_strategy" json:"shutdown_strategy"`
	DependencyNames  []string          `yaml:"dependencies" json:"dependencies"`
	ReadyStrategy    string            `yaml:"ready_strategy" json:"ready_strategy"`
	ReadyTimeoutSec  float64           `yaml:"ready_timeout_sec" json:"ready_timeout_sec"`
	ReadyParams      map[string]any    `yaml:"ready_params" json:"ready_params"`
	LifecycleHooks   []string          `yaml:"lifecycle_hooks" json:"lifecycle_hooks"`
	StatHandlers     []string          `yaml:"stat_handlers" json:"stat_handlers"`
	Affinity         []int             `yaml:"affinity" json:"affinity"`

	// Dependencies holds the resolved handles to the processes named in
	// DependencyNames, populated by topological sort.
	Dependencies []*Process `yaml:"-" json:"-"`

	// HookFunctions and StatHandlerFunctions are materialized once by the
	// plugin registry at Register time; the supervisor calls through them
	// without further name lookups.
	HookFunctions       map[HookPhase][]HookFunc  `yaml:"-" json:"-"`
	StatHandlerFuncs    []StatsHandlerFunc         `yaml:"-" json:"-"`

	// Runtime state, mutated only by the supervisor's monitoring loop.
	Status      Status       `yaml:"-" json:"-"`
	PID         int          `yaml:"-" json:"-"`
	ReturnCode  int          `yaml:"-" json:"-"`
	Runtime     RuntimeInfo  `yaml:"-" json:"-"`
}

// HookFunc is a lifecycle callback. handlePID is 0 for pre_start, which has
// no OS handle yet.
type HookFunc func(p *Process, handlePID int) error

// StatsHandlerFunc receives the per-tick snapshot scoped to the processes
// it is bound to.
type StatsHandlerFunc func(stats []ProcessStats)

// ProcessStats is an immutable per-tick snapshot of one process's resource
// usage.
type ProcessStats struct {
	Name               string
	Path               string
	MemoryUsageMB      float64
	CPUUsagePercent    float64
	MaxMemoryUsageMB   float64
	MaxCPUUsagePercent float64
}

// Command returns the argv for spawning this process: path followed by args.
func (p *Process) Command() []string {
	cmd := make([]string, 0, 1+len(p.Args))
	cmd = append(cmd, p.Path)
	cmd = append(cmd, p.Args...)
	return cmd
}

// Manifest is the top-level declarative document: an ordered list of
// processes plus an optional control-server plugin name.
type Manifest struct {
	Processes     []*Process `yaml:"processes" json:"processes"`
	ControlServer string     `yaml:"control_server" json:"control_server"`

	// path is the absolute path to the manifest file, used to resolve
	// relative process paths and args.
	path string
}

// ByName returns the process with the given name, or nil if absent.
func (m *Manifest) ByName(name string) *Process {
	for _, p := range m.Processes {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Dir returns the directory containing the manifest file.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.path)
}
