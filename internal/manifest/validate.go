package manifest

import (
	"os"
	"runtime"

	"github.com/jrepp/procpilot/internal/errs"
)

// Validate runs the fixed-order validation pipeline: uniqueness,
// dependency-name resolution, topological sort, readiness config,
// affinity bounds, path resolution, working-directory existence.
// It mutates m.Processes into topological order and resolves each
// process's Dependencies, Path, Args, and WorkingDirectory in place.
func (m *Manifest) Validate() error {
	if err := m.validateUniqueness(); err != nil {
		return err
	}
	if err := m.validateDependencyNames(); err != nil {
		return err
	}
	ordered, err := m.topologicalSort()
	if err != nil {
		return err
	}
	m.Processes = ordered

	if err := m.validateReadyConfig(); err != nil {
		return err
	}
	if err := m.validateAffinity(); err != nil {
		return err
	}
	if err := m.resolvePaths(); err != nil {
		return err
	}
	if err := m.validateWorkingDirectories(); err != nil {
		return err
	}
	return nil
}

func (m *Manifest) validateUniqueness() error {
	seen := make(map[string]bool, len(m.Processes))
	for _, p := range m.Processes {
		if seen[p.Name] {
			return errs.New(errs.ManifestValidation, "duplicate process name %q", p.Name).
				WithSuggestion("process names must be unique within a manifest")
		}
		seen[p.Name] = true
	}
	return nil
}

func (m *Manifest) validateDependencyNames() error {
	for _, p := range m.Processes {
		for _, dep := range p.DependencyNames {
			if m.ByName(dep) == nil {
				return errs.New(errs.ManifestValidation,
					"process %q depends on unknown process %q", p.Name, dep).
					WithContext("process", p.Name).
					WithContext("dependency", dep)
			}
		}
	}
	return nil
}

// color marks traversal state during the iterative topological sort.
type color int

const (
	white color = iota // unvisited
	gray               // visiting (on the current DFS stack)
	black              // visited
)

// topologicalSort performs an iterative depth-first topological sort,
// tie-breaking by manifest declaration order. A revisit of a gray node
// reports the offending pair of adjacent nodes as a cycle.
func (m *Manifest) topologicalSort() ([]*Process, error) {
	colors := make(map[string]color, len(m.Processes))
	for _, p := range m.Processes {
		colors[p.Name] = white
	}

	ordered := make([]*Process, 0, len(m.Processes))

	type frame struct {
		p       *Process
		depIdx  int
	}

	for _, root := range m.Processes {
		if colors[root.Name] != white {
			continue
		}

		stack := []*frame{{p: root}}
		colors[root.Name] = gray

		for len(stack) > 0 {
			top := stack[len(stack)-1]

			if top.depIdx < len(top.p.DependencyNames) {
				depName := top.p.DependencyNames[top.depIdx]
				top.depIdx++
				dep := m.ByName(depName)

				switch colors[dep.Name] {
				case white:
					colors[dep.Name] = gray
					stack = append(stack, &frame{p: dep})
				case gray:
					return nil, errs.New(errs.ManifestValidation,
						"circular dependency between %q and %q", top.p.Name, dep.Name).
						WithContext("from", top.p.Name).
						WithContext("to", dep.Name)
				case black:
					// already fully ordered via another path
				}
				continue
			}

			colors[top.p.Name] = black
			ordered = append(ordered, top.p)
			stack = stack[:len(stack)-1]
		}
	}

	for _, p := range ordered {
		p.Dependencies = make([]*Process, 0, len(p.DependencyNames))
		for _, dep := range p.DependencyNames {
			p.Dependencies = append(p.Dependencies, m.ByName(dep))
		}
	}

	return ordered, nil
}

func (m *Manifest) validateReadyConfig() error {
	for _, p := range m.Processes {
		switch p.ReadyStrategy {
		case "file", "pipe":
			if _, ok := p.ReadyParams["path"]; !ok {
				return errs.New(errs.ManifestValidation,
					"process %q: %s ready strategy requires 'path'", p.Name, p.ReadyStrategy).
					WithContext("process", p.Name)
			}
		case "tcp":
			if _, ok := p.ReadyParams["port"]; !ok {
				return errs.New(errs.ManifestValidation,
					"process %q: TCP ready strategy requires 'port'", p.Name).
					WithContext("process", p.Name)
			}
		}
	}
	return nil
}

func (m *Manifest) validateAffinity() error {
	cpuCount := runtime.NumCPU()
	for _, p := range m.Processes {
		for _, cpu := range p.Affinity {
			if cpu < 0 || cpu >= cpuCount {
				return errs.New(errs.ManifestValidation,
					"process %q: affinity cpu %d out of range [0, %d)", p.Name, cpu, cpuCount).
					WithContext("process", p.Name).
					WithContext("cpu", cpu)
			}
		}
	}
	return nil
}

func (m *Manifest) validateWorkingDirectories() error {
	for _, p := range m.Processes {
		if p.WorkingDirectory == "" {
			continue
		}
		info, err := os.Stat(p.WorkingDirectory)
		if err != nil {
			return errs.Wrap(errs.ManifestValidation, err,
				"process %q: working directory %q", p.Name, p.WorkingDirectory).
				WithContext("process", p.Name)
		}
		if !info.IsDir() {
			return errs.New(errs.ManifestValidation,
				"process %q: working directory %q is not a directory", p.Name, p.WorkingDirectory).
				WithContext("process", p.Name)
		}
	}
	return nil
}
