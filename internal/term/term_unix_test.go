//go:build !windows

package term

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosixTerminator_TerminatesProcessGroup(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, cmd.Start())
	// Reap the child concurrently, as the supervisor's procHandle does: an
	// unreaped zombie still answers signal 0.
	go cmd.Wait()

	term := PosixTerminator{}
	err := term.Terminate(cmd.Process.Pid, 500*time.Millisecond)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return cmd.Process.Signal(syscall.Signal(0)) != nil
	}, time.Second, 10*time.Millisecond)
	assert.True(t, true)
}

func TestPosixTerminator_AlreadyGoneIsSwallowed(t *testing.T) {
	cmd := exec.Command("true")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid
	cmd.Wait()

	term := PosixTerminator{}
	err := term.Terminate(pid, 100*time.Millisecond)
	require.NoError(t, err)
}
