package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jrepp/procpilot/internal/errs"
)

// LoadJSON reads and validates a manifest from a JSON file.
func LoadJSON(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ManifestValidation, err, "read manifest %s", path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.ManifestValidation, err, "parse manifest %s", path)
	}
	return finishLoad(&m, path)
}

// LoadYAML reads and validates a manifest from a YAML file.
func LoadYAML(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ManifestValidation, err, "read manifest %s", path)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.ManifestValidation, err, "parse manifest %s", path)
	}
	return finishLoad(&m, path)
}

func finishLoad(m *Manifest, path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errs.Wrap(errs.ManifestValidation, err, "resolve manifest path %s", path)
	}
	m.path = abs

	for _, p := range m.Processes {
		if p.ReadyTimeoutSec == 0 {
			p.ReadyTimeoutSec = defaultReadyTimeoutSec
		}
		if p.ShutdownStrategy == "" {
			p.ShutdownStrategy = ShutdownRestart
		}
		p.Status = StatusInitializing
		p.HookFunctions = make(map[HookPhase][]HookFunc)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
