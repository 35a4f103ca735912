package hooks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrepp/procpilot/internal/manifest"
)

func TestDispatch_RunsHooksInRegistrationOrder(t *testing.T) {
	var order []int
	p := &manifest.Process{Name: "p", HookFunctions: map[manifest.HookPhase][]manifest.HookFunc{
		manifest.HookPostStart: {
			func(*manifest.Process, int) error { order = append(order, 1); return nil },
			func(*manifest.Process, int) error { order = append(order, 2); return nil },
		},
	}}

	d := New(nil, nil)
	require.NoError(t, d.Dispatch(manifest.HookPostStart, p, 123))
	assert.Equal(t, []int{1, 2}, order)
}

func TestDispatch_PreStartFailureIsFatal(t *testing.T) {
	p := &manifest.Process{Name: "p", HookFunctions: map[manifest.HookPhase][]manifest.HookFunc{
		manifest.HookPreStart: {
			func(*manifest.Process, int) error { return errors.New("boom") },
		},
	}}

	d := New(nil, nil)
	err := d.Dispatch(manifest.HookPreStart, p, 0)
	require.Error(t, err)
}

func TestDispatch_PostStartFailureLogsAndContinues(t *testing.T) {
	var ran []int
	p := &manifest.Process{Name: "p", HookFunctions: map[manifest.HookPhase][]manifest.HookFunc{
		manifest.HookPostStart: {
			func(*manifest.Process, int) error { ran = append(ran, 1); return errors.New("boom") },
			func(*manifest.Process, int) error { ran = append(ran, 2); return nil },
		},
	}}

	d := New(nil, nil)
	require.NoError(t, d.Dispatch(manifest.HookPostStart, p, 1))
	assert.Equal(t, []int{1, 2}, ran)
}
