package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jrepp/procpilot/internal/errs"
)

// exemptPaths are literal path-lookup names left unresolved: the caller is
// expected to find them on $PATH rather than relative to the manifest.
var exemptPaths = map[string]bool{
	"python": true,
	"sleep":  true,
}

// resolvePaths resolves each process's Path against the manifest directory,
// expanding a single trailing wildcard segment to its first match, and
// rewrites file-extension-looking Args relative to the same directory.
// WorkingDirectory, if unset, defaults to the parent of the resolved Path.
func (m *Manifest) resolvePaths() error {
	dir := m.Dir()

	for _, p := range m.Processes {
		if exemptPaths[p.Path] {
			if p.WorkingDirectory == "" {
				p.WorkingDirectory = dir
			}
			continue
		}

		resolved, err := resolveExecutablePath(dir, p.Path)
		if err != nil {
			return errs.Wrap(errs.ManifestValidation, err, "process %q: path %q", p.Name, p.Path).
				WithContext("process", p.Name)
		}
		p.Path = resolved

		if p.WorkingDirectory == "" {
			p.WorkingDirectory = filepath.Dir(resolved)
		}

		for i, arg := range p.Args {
			if looksLikeRelativeFileArg(arg) {
				p.Args[i] = filepath.Join(dir, arg)
			}
		}
	}
	return nil
}

// resolveExecutablePath resolves a possibly-relative, possibly-wildcarded
// path against dir and verifies the result names an existing file.
func resolveExecutablePath(dir, path string) (string, error) {
	candidate := path
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(dir, candidate)
	}

	base := filepath.Base(candidate)
	if strings.Contains(base, "*") {
		parent := filepath.Dir(candidate)
		matches, err := filepath.Glob(filepath.Join(parent, base))
		if err != nil {
			return "", err
		}
		if len(matches) == 0 {
			return "", errs.New(errs.ManifestValidation, "no file matches wildcard %q", candidate)
		}
		candidate = matches[0]
	}

	if _, err := os.Stat(candidate); err != nil {
		return "", errs.New(errs.ManifestValidation, "path %q does not exist", candidate)
	}
	return candidate, nil
}

// looksLikeRelativeFileArg reports whether arg resembles a relative path
// with a file extension, e.g. "config/app.yaml" or "data.json", as opposed
// to a flag ("--verbose") or a bare token ("start").
func looksLikeRelativeFileArg(arg string) bool {
	if arg == "" || filepath.IsAbs(arg) || strings.HasPrefix(arg, "-") {
		return false
	}
	ext := filepath.Ext(arg)
	return ext != "" && ext != "."
}
