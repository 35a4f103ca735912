//go:build !windows

package ready

import (
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/jrepp/procpilot/internal/manifest"
)

// PipeProbe succeeds once any data is read from a FIFO at the configured
// path. The FIFO is created if absent and removed on success.
type PipeProbe struct{}

func newPipeProbe() Probe { return PipeProbe{} }

func (PipeProbe) Name() string { return "pipe" }

func (PipeProbe) Wait(p *manifest.Process, pollInterval time.Duration) bool {
	path, ok := p.ReadyParams["path"].(string)
	if !ok || path == "" {
		return false
	}

	if _, err := os.Stat(path); err != nil {
		if err := unix.Mkfifo(path, 0o600); err != nil && !os.IsExist(err) {
			return false
		}
	}

	ok = withDeadline(p.ReadyTimeoutSec, pollInterval, func() bool {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			return false
		}
		defer unix.Close(fd)

		buf := make([]byte, 1)
		n, err := unix.Read(fd, buf)
		return err == nil && n > 0
	})

	if ok {
		os.Remove(path)
	}
	return ok
}
