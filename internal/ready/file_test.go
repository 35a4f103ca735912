package ready

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jrepp/procpilot/internal/manifest"
)

func TestFileProbe_SucceedsOncePathExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ready.flag")

	p := &manifest.Process{ReadyTimeoutSec: 1, ReadyParams: map[string]any{"path": path}}

	go func() {
		time.Sleep(20 * time.Millisecond)
		os.WriteFile(path, []byte("ok"), 0o644)
	}()

	assert.True(t, FileProbe{}.Wait(p, 5*time.Millisecond))
}

func TestFileProbe_TimesOutIfPathNeverAppears(t *testing.T) {
	p := &manifest.Process{ReadyTimeoutSec: 0.05, ReadyParams: map[string]any{"path": "/no/such/path"}}
	assert.False(t, FileProbe{}.Wait(p, 5*time.Millisecond))
}

func TestFileProbe_MissingPathParamFails(t *testing.T) {
	p := &manifest.Process{ReadyTimeoutSec: 1, ReadyParams: map[string]any{}}
	assert.False(t, FileProbe{}.Wait(p, 5*time.Millisecond))
}
