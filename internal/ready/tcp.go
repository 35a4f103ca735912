package ready

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/jrepp/procpilot/internal/manifest"
)

// TCPProbe succeeds once a TCP connection to localhost:port completes.
type TCPProbe struct{}

func (TCPProbe) Name() string { return "tcp" }

func (TCPProbe) Wait(p *manifest.Process, pollInterval time.Duration) bool {
	portVal, ok := p.ReadyParams["port"]
	if !ok {
		return false
	}
	port, ok := asInt(portVal)
	if !ok || port == 0 {
		return false
	}

	addr := fmt.Sprintf("localhost:%d", port)
	return withDeadline(p.ReadyTimeoutSec, pollInterval, func() bool {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	})
}

// asInt coerces the loosely-typed ready_params value (parsed from YAML/JSON
// as int, float64, or string) into an int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
