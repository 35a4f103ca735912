//go:build windows

package term

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// WindowsTerminator enumerates the live descendants of pid bottom-up and
// calls TerminateProcess on each, escalating to a forced kill of any
// survivor once grace elapses.
type WindowsTerminator struct{}

// New returns the platform Terminator for this build.
func New() Terminator { return WindowsTerminator{} }

func (WindowsTerminator) Terminate(pid int, grace time.Duration) error {
	root, err := process.NewProcess(int32(pid))
	if err != nil {
		// already gone
		return nil
	}

	tree := append([]*process.Process{root}, collectDescendants(root)...)

	for i := len(tree) - 1; i >= 0; i-- {
		_ = tree[i].Terminate()
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if !anyRunning(tree) {
			return nil
		}
		time.Sleep(20 * time.Millisecond)
	}

	for _, p := range tree {
		if running, _ := p.IsRunning(); running {
			_ = p.Kill()
		}
	}
	return nil
}

func collectDescendants(root *process.Process) []*process.Process {
	children, err := root.Children()
	if err != nil {
		return nil
	}
	var all []*process.Process
	for _, c := range children {
		all = append(all, c)
		all = append(all, collectDescendants(c)...)
	}
	return all
}

func anyRunning(procs []*process.Process) bool {
	for _, p := range procs {
		if running, err := p.IsRunning(); err == nil && running {
			return true
		}
	}
	return false
}
