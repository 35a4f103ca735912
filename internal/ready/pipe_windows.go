//go:build windows

package ready

import (
	"time"

	"golang.org/x/sys/windows"

	"github.com/jrepp/procpilot/internal/manifest"
)

// PipeProbe succeeds once a message is delivered on a Windows named pipe
// created at the configured path (e.g. `\\.\pipe\NAME`).
type PipeProbe struct{}

func newPipeProbe() Probe { return PipeProbe{} }

func (PipeProbe) Name() string { return "pipe" }

func (PipeProbe) Wait(p *manifest.Process, pollInterval time.Duration) bool {
	path, ok := p.ReadyParams["path"].(string)
	if !ok || path == "" {
		return false
	}

	name, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}

	handle, err := windows.CreateNamedPipe(
		name,
		windows.PIPE_ACCESS_INBOUND,
		windows.PIPE_TYPE_MESSAGE|windows.PIPE_READMODE_MESSAGE|windows.PIPE_WAIT,
		1,
		512, 512,
		0,
		nil,
	)
	if err != nil || handle == windows.InvalidHandle {
		return false
	}
	defer windows.CloseHandle(handle)

	return withDeadline(p.ReadyTimeoutSec, pollInterval, func() bool {
		if err := windows.ConnectNamedPipe(handle, nil); err != nil &&
			err != windows.ERROR_PIPE_CONNECTED {
			return false
		}
		buf := make([]byte, 512)
		var read uint32
		err := windows.ReadFile(handle, buf, &read, nil)
		return err == nil && read > 0
	})
}
