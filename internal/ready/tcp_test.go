package ready

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrepp/procpilot/internal/manifest"
)

func TestTCPProbe_SucceedsOnceListenerAccepts(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	port := ln.Addr().(*net.TCPAddr).Port
	p := &manifest.Process{ReadyTimeoutSec: 2, ReadyParams: map[string]any{"port": port}}

	assert.True(t, TCPProbe{}.Wait(p, 10*time.Millisecond))
}

func TestTCPProbe_TimesOutWithNoListener(t *testing.T) {
	p := &manifest.Process{ReadyTimeoutSec: 0.05, ReadyParams: map[string]any{"port": 1}}
	assert.False(t, TCPProbe{}.Wait(p, 5*time.Millisecond))
}

func TestTCPProbe_MissingPortFails(t *testing.T) {
	p := &manifest.Process{ReadyTimeoutSec: 1, ReadyParams: map[string]any{}}
	assert.False(t, TCPProbe{}.Wait(p, 5*time.Millisecond))
}
