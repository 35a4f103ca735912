//go:build !windows

package supervisor

import (
	"os/exec"
	"syscall"
)

// setProcAttr spawns the child into its own process group so the
// terminator can later signal the whole group via killpg semantics.
func setProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}
