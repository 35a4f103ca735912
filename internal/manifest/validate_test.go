package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProc(name string, deps ...string) *Process {
	return &Process{
		Name:            name,
		Path:            "python",
		DependencyNames: deps,
		ReadyTimeoutSec: defaultReadyTimeoutSec,
	}
}

func TestTopologicalSort_OrdersDependenciesFirst(t *testing.T) {
	m := &Manifest{Processes: []*Process{
		newProc("c", "b"),
		newProc("a"),
		newProc("b", "a"),
	}}

	require.NoError(t, m.Validate())

	var names []string
	for _, p := range m.Processes {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestValidate_DuplicateNameRejected(t *testing.T) {
	m := &Manifest{Processes: []*Process{newProc("a"), newProc("a")}}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate process name")
}

func TestValidate_UnknownDependencyRejected(t *testing.T) {
	m := &Manifest{Processes: []*Process{newProc("a", "ghost")}}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown process")
}

func TestValidate_CycleRejected(t *testing.T) {
	m := &Manifest{Processes: []*Process{
		newProc("p1", "p2"),
		newProc("p2", "p1"),
	}}
	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestValidate_TCPReadyRequiresPort(t *testing.T) {
	p := newProc("db")
	p.ReadyStrategy = "tcp"
	m := &Manifest{Processes: []*Process{p}}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TCP ready strategy requires 'port'")
}

func TestValidate_FileReadyRequiresPath(t *testing.T) {
	p := newProc("svc")
	p.ReadyStrategy = "file"
	m := &Manifest{Processes: []*Process{p}}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file ready strategy requires 'path'")
}

func TestValidate_AffinityOutOfRangeRejected(t *testing.T) {
	p := newProc("w")
	p.Affinity = []int{1 << 20}
	m := &Manifest{Processes: []*Process{p}}

	err := m.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestValidate_EmptyManifestIsStructurallyValid(t *testing.T) {
	m := &Manifest{Processes: nil}
	assert.NoError(t, m.Validate())
}
