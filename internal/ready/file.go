package ready

import (
	"os"
	"time"

	"github.com/jrepp/procpilot/internal/manifest"
)

// FileProbe succeeds once the configured path exists.
type FileProbe struct{}

func (FileProbe) Name() string { return "file" }

func (FileProbe) Wait(p *manifest.Process, pollInterval time.Duration) bool {
	path, ok := p.ReadyParams["path"].(string)
	if !ok || path == "" {
		return false
	}

	return withDeadline(p.ReadyTimeoutSec, pollInterval, func() bool {
		_, err := os.Stat(path)
		return err == nil
	})
}
