//go:build !windows

package term

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// PosixTerminator signals the process group of a child spawned as its own
// group leader (pid == pgid): SIGTERM, wait up to grace, then SIGKILL.
type PosixTerminator struct{}

// New returns the platform Terminator for this build.
func New() Terminator { return PosixTerminator{} }

func (PosixTerminator) Terminate(pid int, grace time.Duration) error {
	pgid := pid

	if err := unix.Kill(-pgid, syscall.SIGTERM); err != nil && err != unix.ESRCH {
		return err
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := unix.Kill(-pgid, syscall.SIGKILL); err != nil && err != unix.ESRCH {
		return err
	}
	return nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On POSIX, os.FindProcess always succeeds; signal 0 is the liveness probe.
	return proc.Signal(syscall.Signal(0)) == nil
}
