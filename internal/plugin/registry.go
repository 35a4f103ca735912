package plugin

import (
	"log/slog"
	"os"
	goplugin "plugin"
	"sort"

	"github.com/jrepp/procpilot/internal/errs"
	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/ready"
)

// Registry collects named readiness strategies, lifecycle hooks, stats
// handlers, and control-server factories from registered plugins, and
// binds them by name into each Process's materialized function tables.
//
// Registration is last-writer-wins with a logged warning on name collision.
// Bindings are resolved once, at Register time; the supervisor never
// performs a name lookup on the hot path.
type Registry struct {
	logger *slog.Logger

	readyStrategies map[string]ready.Probe
	hookGroups      map[string]HookGroup
	statsHandlers   map[string]manifest.StatsHandlerFunc
	controlServers  map[string]ControlServerFactory
}

// NewRegistry returns an empty registry. Call RegisterBuiltins to install
// the built-in probes.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:          logger,
		readyStrategies: make(map[string]ready.Probe),
		hookGroups:      make(map[string]HookGroup),
		statsHandlers:   make(map[string]manifest.StatsHandlerFunc),
		controlServers:  make(map[string]ControlServerFactory),
	}
}

// RegisterBuiltins installs the tcp/file/pipe readiness probes.
func (r *Registry) RegisterBuiltins(m *manifest.Manifest) {
	for name, probe := range ready.Builtins() {
		if _, exists := r.readyStrategies[name]; exists {
			r.logger.Warn("ready strategy name collision", "name", name)
		}
		r.readyStrategies[name] = probe
	}
	r.rebind(m)
}

// Register merges each plugin's contributions into the registry, then
// rebinds every process in m against the updated tables.
func (r *Registry) Register(m *manifest.Manifest, plugins ...Plugin) {
	for _, p := range plugins {
		if rs, ok := p.(ReadyStrategyProvider); ok {
			for name, probe := range rs.ReadyStrategies() {
				if _, exists := r.readyStrategies[name]; exists {
					r.logger.Warn("ready strategy name collision", "name", name, "plugin", p.PluginName())
				}
				r.readyStrategies[name] = probe
			}
		}
		if lh, ok := p.(LifecycleHookProvider); ok {
			for _, group := range lh.LifecycleHooks() {
				if _, exists := r.hookGroups[group.Name]; exists {
					r.logger.Warn("hook group name collision", "name", group.Name, "plugin", p.PluginName())
				}
				r.hookGroups[group.Name] = group
			}
		}
		if sh, ok := p.(StatsHandlerProvider); ok {
			for name, fn := range sh.StatsHandlers() {
				if _, exists := r.statsHandlers[name]; exists {
					r.logger.Warn("stats handler name collision", "name", name, "plugin", p.PluginName())
				}
				r.statsHandlers[name] = fn
			}
		}
		if cs, ok := p.(ControlServerProvider); ok {
			for name, factory := range cs.ControlServers() {
				if _, exists := r.controlServers[name]; exists {
					r.logger.Warn("control server name collision", "name", name, "plugin", p.PluginName())
				}
				r.controlServers[name] = factory
			}
		}
	}
	r.rebind(m)
}

// rebind installs every bound lifecycle hook and stats handler into each
// process's materialized function tables, in registration order. Unbound
// lifecycle_hooks and stat_handlers names are skipped without error. Ready
// strategies are not bound here: an unbound ready_strategy name surfaces as
// MissingStrategy from GetReadyStrategy when that process starts.
func (r *Registry) rebind(m *manifest.Manifest) {
	if m == nil {
		return
	}
	for _, p := range m.Processes {
		if p.HookFunctions == nil {
			p.HookFunctions = make(map[manifest.HookPhase][]manifest.HookFunc)
		}
		for _, groupName := range p.LifecycleHooks {
			group, ok := r.hookGroups[groupName]
			if !ok {
				continue
			}
			for phase, fns := range group.Hooks {
				p.HookFunctions[phase] = append(p.HookFunctions[phase], fns...)
			}
		}

		p.StatHandlerFuncs = p.StatHandlerFuncs[:0]
		for _, name := range p.StatHandlers {
			if fn, ok := r.statsHandlers[name]; ok {
				p.StatHandlerFuncs = append(p.StatHandlerFuncs, fn)
			}
		}
	}
}

// GetReadyStrategy returns the probe bound to name, if any.
func (r *Registry) GetReadyStrategy(name string) (ready.Probe, error) {
	probe, ok := r.readyStrategies[name]
	if !ok {
		return nil, errs.New(errs.MissingStrategy, "no ready strategy registered for %q", name)
	}
	return probe, nil
}

// GetControlServerFactory returns the factory bound to name, if any.
func (r *Registry) GetControlServerFactory(name string) (ControlServerFactory, bool) {
	f, ok := r.controlServers[name]
	return f, ok
}

// LoadFromDirectory scans dir for compiled Go plugin objects (.so files
// built with `go build -buildmode=plugin`) exporting a `Plugin` symbol
// satisfying the Plugin interface, and registers each one found. Load
// failures for an individual file are logged and skipped; the directory
// scan itself is best-effort.
func (r *Registry) LoadFromDirectory(dir string, m *manifest.Manifest) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errs.Wrap(errs.ManifestValidation, err, "scan plugin directory %s", dir)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var loaded []Plugin
	for _, name := range names {
		if len(name) < 3 || name[len(name)-3:] != ".so" {
			continue
		}
		p, err := r.loadOne(dir + string(os.PathSeparator) + name)
		if err != nil {
			r.logger.Warn("failed to load plugin", "file", name, "error", err)
			continue
		}
		loaded = append(loaded, p)
	}

	if len(loaded) > 0 {
		r.Register(m, loaded...)
	}
	return nil
}

func (r *Registry) loadOne(path string) (Plugin, error) {
	so, err := goplugin.Open(path)
	if err != nil {
		return nil, err
	}
	sym, err := so.Lookup("Plugin")
	if err != nil {
		return nil, err
	}
	p, ok := sym.(Plugin)
	if !ok {
		return nil, errs.New(errs.ManifestValidation, "%s: exported Plugin symbol does not satisfy plugin.Plugin", path)
	}
	return p, nil
}
