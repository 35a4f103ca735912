package plugin

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/ready"
)

type fakePlugin struct {
	name  string
	hooks []HookGroup
	stats map[string]manifest.StatsHandlerFunc
}

func (f *fakePlugin) PluginName() string                        { return f.name }
func (f *fakePlugin) LifecycleHooks() []HookGroup                { return f.hooks }
func (f *fakePlugin) StatsHandlers() map[string]manifest.StatsHandlerFunc { return f.stats }

func TestRegisterBuiltins_InstallsTCPFileAndPipeProbes(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterBuiltins(&manifest.Manifest{})

	for _, name := range []string{"tcp", "file", "pipe"} {
		probe, err := r.GetReadyStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, name, probe.Name())
	}
}

func TestGetReadyStrategy_UnknownNameIsMissingStrategy(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.GetReadyStrategy("nope")
	require.Error(t, err)
}

func TestRegister_RebindsHooksAndStatsHandlersByName(t *testing.T) {
	var fired []string
	fp := &fakePlugin{
		name: "demo",
		hooks: []HookGroup{
			{Name: "logging", Hooks: map[manifest.HookPhase][]manifest.HookFunc{
				manifest.HookPreStart: {func(p *manifest.Process, _ int) error {
					fired = append(fired, p.Name)
					return nil
				}},
			}},
		},
		stats: map[string]manifest.StatsHandlerFunc{
			"collector": func([]manifest.ProcessStats) {},
		},
	}

	proc := &manifest.Process{
		Name:           "svc",
		LifecycleHooks: []string{"logging"},
		StatHandlers:   []string{"collector"},
		HookFunctions:  map[manifest.HookPhase][]manifest.HookFunc{},
	}
	m := &manifest.Manifest{Processes: []*manifest.Process{proc}}

	r := NewRegistry(nil)
	r.Register(m, fp)

	require.Len(t, proc.HookFunctions[manifest.HookPreStart], 1)
	require.Len(t, proc.StatHandlerFuncs, 1)

	proc.HookFunctions[manifest.HookPreStart][0](proc, 0)
	assert.Equal(t, []string{"svc"}, fired)
}

type customProbe struct{}

func (customProbe) Name() string { return "custom-tcp" }
func (customProbe) Wait(p *manifest.Process, pollInterval time.Duration) bool { return false }

type probePlugin struct{}

func (probePlugin) PluginName() string { return "custom" }
func (probePlugin) ReadyStrategies() map[string]ready.Probe {
	return map[string]ready.Probe{"tcp": customProbe{}}
}

func TestRegister_DuplicateReadyStrategyNameOverwritesLastWriter(t *testing.T) {
	r := NewRegistry(nil)
	r.RegisterBuiltins(&manifest.Manifest{})

	r.Register(&manifest.Manifest{}, probePlugin{})
	probe, err := r.GetReadyStrategy("tcp")
	require.NoError(t, err)
	assert.Equal(t, "custom-tcp", probe.Name())
}
