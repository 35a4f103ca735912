package supervisor

import (
	"time"

	"github.com/jrepp/procpilot/internal/errs"
	"github.com/jrepp/procpilot/internal/manifest"
)

// Start brings up every declared process in dependency order, gating each
// on its readiness strategy before advancing, then enters the poll loop on
// the calling goroutine. It returns once the poll loop has stopped (via
// Stop or a shutdown_everything cascade).
func (s *Supervisor) Start() error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return errs.New(errs.AlreadyRunning, "supervisor already running")
	}
	s.state = StateRunning
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	if len(s.manifest.Processes) == 0 {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return errs.New(errs.SpawnError, "No processes to start")
	}

	if err := s.initializeProcesses(); err != nil {
		s.teardown()
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
		return err
	}

	s.pollLoop()
	return nil
}

// initializeProcesses runs the §4.E start sequence over every process in
// manifest (topological) order, stopping at the first step that fails and
// returning its error; Start then tears down the already-started siblings.
func (s *Supervisor) initializeProcesses() error {
	for _, p := range s.manifest.Processes {
		if err := s.startOne(p); err != nil {
			return err
		}
	}
	return nil
}

// startOne executes steps 1-6 of §4.E for a single declared process and,
// on success, appends it to the running table.
func (s *Supervisor) startOne(p *manifest.Process) error {
	if err := s.dispatcher.Dispatch(manifest.HookPreStart, p, 0); err != nil {
		return err
	}

	handle, err := s.spawnProcess(p)
	if err != nil {
		s.collector.ProcessSpawnDuration(p.Name, 0, err)
		return err
	}
	s.collector.ProcessStateTransition(p.Name, string(manifest.StatusInitializing), string(manifest.StatusStarting))

	if p.ReadyStrategy != "" {
		probe, err := s.registry.GetReadyStrategy(p.ReadyStrategy)
		if err != nil {
			return err
		}
		ok := probe.Wait(p, readyPollInterval)
		s.collector.ReadyProbeResult(p.Name, p.ReadyStrategy, ok)
		if !ok {
			return errs.New(errs.ReadyTimeout, "process %q did not become ready within %.1fs", p.Name, p.ReadyTimeoutSec).
				WithContext("process", p.Name)
		}
	}

	if err := s.dispatcher.Dispatch(manifest.HookPostStart, p, p.PID); err != nil {
		s.logger.Error("post_start hook failed", "process", p.Name, "error", err)
	}
	p.Status = manifest.StatusReady
	s.collector.ProcessStateTransition(p.Name, string(manifest.StatusStarting), string(manifest.StatusReady))

	s.mu.Lock()
	s.running = append(s.running, &runningEntry{process: p, cmd: handle})
	s.mu.Unlock()
	return nil
}

// pollLoop is the single-threaded cooperative monitoring loop. It suspends
// only at the periodic sleep (readiness waits and termination waits happen
// inside startOne/Stop on this same goroutine, never concurrently with it).
func (s *Supervisor) pollLoop() {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		if stop := s.drainCommands(); stop {
			s.shutdownNow()
			close(s.doneCh)
			return
		}

		if s.State() == StateStopping {
			s.shutdownNow()
			close(s.doneCh)
			return
		}

		s.tick()

		s.mu.Lock()
		empty := len(s.running) == 0
		stopping := s.state == StateStopping
		s.mu.Unlock()
		if empty && !stopping {
			s.logger.Info("no processes to manage")
			s.shutdownNow()
			close(s.doneCh)
			return
		}

		<-ticker.C
	}
}

// tick scans the running table once: liveness + restart policy for exited
// children, stats sampling for live ones, then stats-handler fan-out.
func (s *Supervisor) tick() {
	s.mu.Lock()
	entries := make([]*runningEntry, len(s.running))
	copy(entries, s.running)
	s.mu.Unlock()

	var snapshot []manifest.ProcessStats
	var survivors []*runningEntry

	for i, e := range entries {
		exited, code := e.cmd.exitedNonBlocking()
		if exited {
			s.handleExit(e, code, &survivors)
			if e.process.ShutdownStrategy == manifest.ShutdownEverything {
				// Short-circuit the scan; keep the rest for teardown.
				survivors = append(survivors, entries[i+1:]...)
				break
			}
			continue
		}

		if err := s.sampler.Sample(e.process); err != nil {
			s.logger.Warn("stats sample failed", "process", e.process.Name, "error", err)
		} else {
			snapshot = append(snapshot, snapshotOf(e.process))
		}
		survivors = append(survivors, e)
	}

	s.mu.Lock()
	s.running = survivors
	s.mu.Unlock()

	s.fanOutStats(survivors, snapshot)
}

func snapshotOf(p *manifest.Process) manifest.ProcessStats {
	mem, cpu, maxMem, maxCPU := p.Runtime.Snapshot()
	return manifest.ProcessStats{
		Name:               p.Name,
		Path:               p.Path,
		MemoryUsageMB:      mem,
		CPUUsagePercent:    cpu,
		MaxMemoryUsageMB:   maxMem,
		MaxCPUUsagePercent: maxCPU,
	}
}

// handleExit applies a process's shutdown_strategy once its child has
// exited. restart re-spawns in place without re-gating readiness;
// do_not_restart drops the entry; shutdown_everything cascades to Stop.
func (s *Supervisor) handleExit(e *runningEntry, code int, survivors *[]*runningEntry) {
	p := e.process
	p.ReturnCode = code
	s.logger.Info("process exited", "process", p.Name, "code", code)

	if err := s.dispatcher.Dispatch(manifest.HookOnShutdown, p, 0); err != nil {
		s.logger.Error("on_shutdown hook failed", "process", p.Name, "error", err)
	}

	switch p.ShutdownStrategy {
	case manifest.ShutdownEverything:
		p.Status = manifest.StatusStopping
		s.mu.Lock()
		s.state = StateStopping
		s.mu.Unlock()

	case manifest.ShutdownDoNotRestart:
		p.Status = manifest.StatusStopped

	default: // restart
		handle, err := s.spawnProcess(p)
		if err != nil {
			s.logger.Error("restart failed", "process", p.Name, "error", err)
			p.Status = manifest.StatusFailed
			return
		}
		s.collector.ProcessRestart(p.Name)
		if err := s.dispatcher.Dispatch(manifest.HookOnRestart, p, p.PID); err != nil {
			s.logger.Error("on_restart hook failed", "process", p.Name, "error", err)
		}
		p.Status = manifest.StatusRunning
		*survivors = append(*survivors, &runningEntry{process: p, cmd: handle})
	}
}

// fanOutStats invokes each live process's bound stats handlers with the
// snapshot from scopedSnapshot: the stats of every process that shares at
// least one stat_handlers name with that process, never the full running
// table. The scope is per process, not per handler name: when a process
// is bound to several handler names, each of its handlers receives the
// union. A handler bound to several processes is invoked once per such
// process on each tick.
func (s *Supervisor) fanOutStats(entries []*runningEntry, snapshot []manifest.ProcessStats) {
	byName := make(map[string]manifest.ProcessStats, len(snapshot))
	for _, st := range snapshot {
		byName[st.Name] = st
	}

	for _, e := range entries {
		p := e.process
		if len(p.StatHandlerFuncs) == 0 {
			continue
		}
		scoped := scopedSnapshot(p, entries, byName)
		for _, fn := range p.StatHandlerFuncs {
			s.invokeStatsHandler(fn, scoped)
		}
	}
}

// scopedSnapshot collects the stats for every process that shares at least
// one stat_handlers name with p.
func scopedSnapshot(p *manifest.Process, entries []*runningEntry, byName map[string]manifest.ProcessStats) []manifest.ProcessStats {
	names := make(map[string]bool, len(p.StatHandlers))
	for _, n := range p.StatHandlers {
		names[n] = true
	}

	var scoped []manifest.ProcessStats
	for _, e := range entries {
		shared := false
		for _, n := range e.process.StatHandlers {
			if names[n] {
				shared = true
				break
			}
		}
		if shared {
			if st, ok := byName[e.process.Name]; ok {
				scoped = append(scoped, st)
			}
		}
	}
	return scoped
}

func (s *Supervisor) invokeStatsHandler(fn manifest.StatsHandlerFunc, stats []manifest.ProcessStats) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("stats handler panicked", "panic", r)
			s.collector.StatsHandlerFailure("unknown")
		}
	}()
	fn(stats)
}

// teardown terminates every currently-running process tree, used to roll
// back a partially-completed Start.
func (s *Supervisor) teardown() {
	s.mu.Lock()
	entries := make([]*runningEntry, len(s.running))
	copy(entries, s.running)
	s.running = nil
	s.mu.Unlock()

	for _, e := range entries {
		s.terminateEntry(e)
	}
}

func (s *Supervisor) terminateEntry(e *runningEntry) {
	grace := time.Duration(e.process.TimeoutSec * float64(time.Second))
	if grace <= 0 {
		grace = 5 * time.Second
	}
	start := time.Now()
	if err := s.terminator.Terminate(e.cmd.pid(), grace); err != nil {
		s.logger.Warn("termination error", "process", e.process.Name, "error", err)
	}
	s.collector.TerminationDuration(e.process.Name, time.Since(start))
	e.process.Status = manifest.StatusStopped
}
