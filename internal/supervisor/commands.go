package supervisor

import (
	"github.com/jrepp/procpilot/internal/errs"
	"github.com/jrepp/procpilot/internal/manifest"
)

// StartProcess spawns a single declared-but-not-running process, applying
// the same start sequence as Start's per-process steps.
func (s *Supervisor) StartProcess(name string) error {
	return s.submit(command{kind: cmdStartProcess, names: []string{name}})
}

// StopProcess terminates the named process's tree and marks it STOPPED
// without restarting it, regardless of its shutdown_strategy.
func (s *Supervisor) StopProcess(name string) error {
	return s.submit(command{kind: cmdStopProcess, names: []string{name}})
}

// RestartProcesses terminates and re-spawns each named process. Validation
// is atomic: an unknown name leaves the running table entirely unchanged.
func (s *Supervisor) RestartProcesses(names []string) error {
	return s.submit(command{kind: cmdRestartProcesses, names: names})
}

// GetRunningProcess returns a snapshot of the named running process, or nil
// if it is not currently running.
func (s *Supervisor) GetRunningProcess(name string) (*manifest.ProcessStats, error) {
	cmd := command{
		kind:   cmdGetRunningProcess,
		names:  []string{name},
		result: make(chan error, 1),
		stats:  make(chan *manifest.ProcessStats, 1),
	}
	s.cmdCh <- cmd
	if err := <-cmd.result; err != nil {
		return nil, err
	}
	return <-cmd.stats, nil
}

// Stop drives a clean shutdown of the engine: terminate every running
// process tree, clear the running table, and return to idle. It is a
// no-op when the engine is already idle.
func (s *Supervisor) Stop() error {
	if s.State() == StateIdle {
		return nil
	}
	return s.submit(command{kind: cmdStopEngine})
}

// submit enqueues cmd and blocks for its completion. Used by operator
// methods that return only an error.
func (s *Supervisor) submit(cmd command) error {
	cmd.result = make(chan error, 1)
	s.cmdCh <- cmd
	return <-cmd.result
}

// drainCommands processes every command currently queued, without
// blocking. It runs at the head of each poll tick on the monitoring
// goroutine, so every mutation of the running table is serialized. It
// returns true if a stop-engine command was processed.
func (s *Supervisor) drainCommands() bool {
	for {
		select {
		case cmd := <-s.cmdCh:
			stop := s.execCommand(cmd)
			if stop {
				return true
			}
		default:
			return false
		}
	}
}

func (s *Supervisor) execCommand(cmd command) (stopEngine bool) {
	switch cmd.kind {
	case cmdStartProcess:
		cmd.result <- s.execStartProcess(cmd.names[0])
	case cmdStopProcess:
		cmd.result <- s.execStopProcess(cmd.names[0])
	case cmdRestartProcesses:
		cmd.result <- s.execRestartProcesses(cmd.names)
	case cmdGetRunningProcess:
		st, err := s.execGetRunningProcess(cmd.names[0])
		// Send on stats before result: the caller blocks on result first,
		// so by the time it wakes stats already holds its (possibly nil)
		// value in its buffer.
		cmd.stats <- st
		cmd.result <- err
	case cmdStopEngine:
		cmd.result <- nil
		return true
	}
	return false
}

func (s *Supervisor) execStartProcess(name string) error {
	p := s.manifest.ByName(name)
	if p == nil {
		return errs.New(errs.NotFound, "process %q not found", name)
	}
	if s.findRunning(name) != nil {
		return errs.New(errs.AlreadyRunning, "process %q already running", name)
	}
	return s.startOne(p)
}

func (s *Supervisor) execStopProcess(name string) error {
	entry := s.findRunning(name)
	if entry == nil {
		return errs.New(errs.NotFound, "process %q not found", name)
	}
	s.terminateEntry(entry)
	s.removeRunning(name)
	return nil
}

// execRestartProcesses validates every name exists among declared
// processes before terminating or spawning anything, so an unknown name
// leaves the running table untouched. A spawn failure part-way through
// returns that error and leaves the earlier restarts in place.
func (s *Supervisor) execRestartProcesses(names []string) error {
	for _, name := range names {
		if s.manifest.ByName(name) == nil {
			return errs.New(errs.NotFound, "process %q not found", name)
		}
	}

	for _, name := range names {
		if entry := s.findRunning(name); entry != nil {
			s.terminateEntry(entry)
			s.removeRunning(name)
		}
		p := s.manifest.ByName(name)
		if err := s.startOne(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Supervisor) execGetRunningProcess(name string) (*manifest.ProcessStats, error) {
	entry := s.findRunning(name)
	if entry == nil {
		return nil, nil
	}
	st := snapshotOf(entry.process)
	return &st, nil
}

func (s *Supervisor) findRunning(name string) *runningEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.running {
		if e.process.Name == name {
			return e
		}
	}
	return nil
}

func (s *Supervisor) removeRunning(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.running[:0]
	for _, e := range s.running {
		if e.process.Name != name {
			kept = append(kept, e)
		}
	}
	s.running = kept
}

// shutdownNow terminates every running process tree and returns the engine
// to idle. Unlike Stop, it runs directly on the monitoring goroutine and
// must only be called from within pollLoop.
func (s *Supervisor) shutdownNow() {
	s.teardown()
	s.mu.Lock()
	s.state = StateIdle
	s.mu.Unlock()
}
