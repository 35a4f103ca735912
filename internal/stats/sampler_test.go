package stats

import (
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrepp/procpilot/internal/manifest"
)

func TestSample_RecordsMemoryAndTracksRunningMax(t *testing.T) {
	cmd := exec.Command("sleep", "5")
	require.NoError(t, cmd.Start())
	defer func() {
		cmd.Process.Kill()
		cmd.Wait()
	}()

	p := &manifest.Process{Name: "w", PID: cmd.Process.Pid}
	s := NewSampler()

	require.NoError(t, s.Sample(p))
	firstMem, _, firstMaxMem, _ := p.Runtime.Snapshot()
	assert.GreaterOrEqual(t, firstMaxMem, firstMem)

	require.NoError(t, s.Sample(p))
	secondMem, _, secondMaxMem, _ := p.Runtime.Snapshot()
	assert.GreaterOrEqual(t, secondMaxMem, secondMem)
	assert.GreaterOrEqual(t, secondMaxMem, firstMaxMem)
}

func TestSample_NoSuchProcessIsIdentifiable(t *testing.T) {
	p := &manifest.Process{Name: "ghost", PID: os.Getpid() + 1_000_000}
	err := s().Sample(p)
	require.Error(t, err)
	assert.True(t, IsNotExist(err))
}

func s() *Sampler { return NewSampler() }
