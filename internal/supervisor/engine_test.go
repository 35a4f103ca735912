package supervisor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrepp/procpilot/internal/manifest"
	"github.com/jrepp/procpilot/internal/plugin"
)

func sleepManifest(t *testing.T, names ...string) *manifest.Manifest {
	t.Helper()
	procs := make([]*manifest.Process, 0, len(names))
	for _, n := range names {
		procs = append(procs, &manifest.Process{
			Name:             n,
			Path:             "sleep",
			Args:             []string{"30"},
			ShutdownStrategy: manifest.ShutdownDoNotRestart,
			ReadyTimeoutSec:  2,
			HookFunctions:    map[manifest.HookPhase][]manifest.HookFunc{},
		})
	}
	m := &manifest.Manifest{Processes: procs}
	require.NoError(t, m.Validate())
	return m
}

func newTestSupervisor(t *testing.T, m *manifest.Manifest) *Supervisor {
	t.Helper()
	registry := plugin.NewRegistry(nil)
	registry.RegisterBuiltins(m)
	return New(m, registry, WithPollInterval(10*time.Millisecond))
}

func TestStart_SpawnsProcessesAndReachesEmptyRunningTableOnStop(t *testing.T) {
	m := sleepManifest(t, "w1", "w2")
	s := newTestSupervisor(t, m)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	require.Eventually(t, func() bool { return s.State() == StateRunning }, time.Second, 5*time.Millisecond)

	st, err := s.GetRunningProcess("w1")
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, "w1", st.Name)

	require.NoError(t, s.Stop())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.Empty(t, s.running)
}

func TestStartProcess_UnknownNameIsNotFound(t *testing.T) {
	m := sleepManifest(t, "w1")
	s := newTestSupervisor(t, m)

	go s.Start()
	require.Eventually(t, func() bool { return s.State() == StateRunning }, time.Second, 5*time.Millisecond)
	defer s.Stop()

	err := s.StartProcess("ghost")
	require.Error(t, err)
}

func TestRestartProcesses_UnknownNameLeavesRunningTableUnchanged(t *testing.T) {
	m := sleepManifest(t, "w1")
	s := newTestSupervisor(t, m)

	go s.Start()
	require.Eventually(t, func() bool { return s.State() == StateRunning }, time.Second, 5*time.Millisecond)
	defer s.Stop()

	before, err := s.GetRunningProcess("w1")
	require.NoError(t, err)
	require.NotNil(t, before)

	err = s.RestartProcesses([]string{"w1", "ghost"})
	require.Error(t, err)

	after, err := s.GetRunningProcess("w1")
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.Name, after.Name)
}

func TestMergeEnv_ChildOverridesParent(t *testing.T) {
	base := []string{"PATH=/usr/bin", "HOME=/root"}
	merged := mergeEnv(base, map[string]string{"HOME": "/custom", "EXTRA": "1"})

	assertHas := func(kv string) {
		for _, e := range merged {
			if e == kv {
				return
			}
		}
		t.Fatalf("expected %q in merged env: %v", kv, merged)
	}
	assertHas("PATH=/usr/bin")
	assertHas("HOME=/custom")
	assertHas("EXTRA=1")
}
