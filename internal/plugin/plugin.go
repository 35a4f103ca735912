// Package plugin implements the capability registry that binds named
// readiness strategies, lifecycle hooks, stats handlers, and control-server
// factories to the processes that reference them.
package plugin

import (
	"context"

	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/ready"
)

// Plugin is the marker interface every registrable plugin object satisfies.
// A plugin exposes zero or more of the optional capability interfaces below;
// the registry resolves them once, at Register time, via type assertion.
type Plugin interface {
	PluginName() string
}

// ReadyStrategyProvider contributes named readiness probes.
type ReadyStrategyProvider interface {
	ReadyStrategies() map[string]ready.Probe
}

// HookGroup is a named bundle of per-phase lifecycle hooks; Process's
// lifecycle_hooks entries name a HookGroup.
type HookGroup struct {
	Name  string
	Hooks map[manifest.HookPhase][]manifest.HookFunc
}

// LifecycleHookProvider contributes named hook groups.
type LifecycleHookProvider interface {
	LifecycleHooks() []HookGroup
}

// StatsHandlerProvider contributes named stats handlers; Process's
// stat_handlers entries name one of these.
type StatsHandlerProvider interface {
	StatsHandlers() map[string]manifest.StatsHandlerFunc
}

// ControlServer is the minimal lifecycle contract for an out-of-process
// operator transport; the supervisor core never calls it directly, it is
// merely a name the control_server manifest key resolves to.
type ControlServer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ControlServerFactory constructs a ControlServer bound to this registry's
// supervisor operations.
type ControlServerFactory func() ControlServer

// ControlServerProvider contributes named control-server factories.
type ControlServerProvider interface {
	ControlServers() map[string]ControlServerFactory
}
