// Package ready implements the built-in readiness probes: tcp, file, pipe.
package ready

import (
	"time"

	"github.com/jrepp/procpilot/internal/manifest"
)

// Probe decides when a newly-spawned process is ready enough for its
// dependents to start. Wait blocks, retrying every pollInterval, until
// either the probe succeeds or the process's ReadyTimeoutSec elapses.
type Probe interface {
	Name() string
	Wait(p *manifest.Process, pollInterval time.Duration) bool
}

// Builtins returns the three built-in probes, keyed by strategy name, for
// registering into a plugin.Registry at supervisor construction.
func Builtins() map[string]Probe {
	return map[string]Probe{
		"tcp":  TCPProbe{},
		"file": FileProbe{},
		"pipe": newPipeProbe(),
	}
}

// withDeadline runs attempt repeatedly, sleeping pollInterval between
// failures, until it returns true or timeoutSec has elapsed since the
// first attempt. Errors within a single attempt are the caller's concern;
// withDeadline only sees the bool outcome.
func withDeadline(timeoutSec float64, pollInterval time.Duration, attempt func() bool) bool {
	deadline := time.Now().Add(time.Duration(timeoutSec * float64(time.Second)))
	for {
		if attempt() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
}
