package supervisor

import (
	"os"
	"os/exec"
	"time"

	"github.com/jrepp/procpilot/internal/affinity"
	"github.com/jrepp/procpilot/internal/errs"
	"github.com/jrepp/procpilot/internal/manifest"
)

const readyPollInterval = 100 * time.Millisecond

// spawnProcess starts p's executable with its merged environment and
// working directory, applies CPU affinity if set, and returns the live
// handle. It does not gate on readiness; the caller does that separately.
func (s *Supervisor) spawnProcess(p *manifest.Process) (*procHandle, error) {
	cmd := exec.Command(p.Path, p.Args...)
	cmd.Dir = p.WorkingDirectory
	cmd.Env = mergeEnv(os.Environ(), p.Env)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	setProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return nil, errs.Wrap(errs.SpawnError, err, "spawn %q", p.Name).WithContext("process", p.Name)
	}

	handle := newProcHandle(cmd)
	p.PID = handle.pid()
	p.Status = manifest.StatusStarting

	if len(p.Affinity) > 0 && affinity.Supported {
		if err := affinity.Set(p.PID, p.Affinity); err != nil {
			s.logger.Warn("failed to set cpu affinity", "process", p.Name, "error", err)
		}
	}

	return handle, nil
}

// mergeEnv overlays extra onto base (parent environment), child keys
// overriding parent keys of the same name.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}

	seen := make(map[string]bool, len(extra))
	merged := make([]string, 0, len(base)+len(extra))

	for _, kv := range base {
		key := kv
		for i, c := range kv {
			if c == '=' {
				key = kv[:i]
				break
			}
		}
		if v, override := extra[key]; override {
			merged = append(merged, key+"="+v)
			seen[key] = true
		} else {
			merged = append(merged, kv)
		}
	}

	for k, v := range extra {
		if !seen[k] {
			merged = append(merged, k+"="+v)
		}
	}

	return merged
}
