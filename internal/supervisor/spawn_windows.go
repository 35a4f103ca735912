//go:build windows

package supervisor

import "os/exec"

// setProcAttr is a no-op on Windows: process-tree termination enumerates
// descendants via the host process-inspection API instead of relying on a
// POSIX process group.
func setProcAttr(cmd *exec.Cmd) {}
