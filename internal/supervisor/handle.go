package supervisor

import (
	"os/exec"
	"sync"
)

// procHandle wraps a spawned child's *exec.Cmd. A background goroutine
// calls Wait (required by os/exec to reap the child and avoid zombies) and
// publishes the result on exited; the poll loop only ever performs a
// non-blocking check against that channel, so liveness detection itself
// still happens entirely on the monitoring goroutine.
type procHandle struct {
	cmd *exec.Cmd

	mu         sync.Mutex
	exited     chan struct{}
	exitCode   int
	exitCalled bool
}

func newProcHandle(cmd *exec.Cmd) *procHandle {
	h := &procHandle{cmd: cmd, exited: make(chan struct{})}
	go h.wait()
	return h
}

func (h *procHandle) wait() {
	err := h.cmd.Wait()
	h.mu.Lock()
	defer h.mu.Unlock()
	if exitErr, ok := err.(*exec.ExitError); ok {
		h.exitCode = exitErr.ExitCode()
	} else if err == nil {
		h.exitCode = 0
	} else {
		h.exitCode = -1
	}
	h.exitCalled = true
	close(h.exited)
}

// exitedNonBlocking reports whether the child has exited and, if so, its
// exit code. It never blocks.
func (h *procHandle) exitedNonBlocking() (exited bool, code int) {
	select {
	case <-h.exited:
		h.mu.Lock()
		defer h.mu.Unlock()
		return true, h.exitCode
	default:
		return false, 0
	}
}

func (h *procHandle) pid() int {
	return h.cmd.Process.Pid
}
