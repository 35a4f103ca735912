// Package stats samples per-process resource usage via gopsutil.
package stats

import (
	"github.com/shirou/gopsutil/v3/process"

	"github.com/jrepp/procpilot/internal/manifest"
)

// Sampler reads memory RSS and CPU percent for a running process and
// records them onto its RuntimeInfo, which tracks the running maximum.
type Sampler struct{}

// NewSampler returns a Sampler.
func NewSampler() *Sampler { return &Sampler{} }

// Sample updates p.Runtime from the live OS process identified by p.PID.
// "No such process" is a transient the caller should swallow (the process
// may have just exited and not yet been reaped by the poll loop); any other
// error is returned for the caller to decide whether it is a permission
// failure worth propagating.
func (s *Sampler) Sample(p *manifest.Process) error {
	proc, err := process.NewProcess(int32(p.PID))
	if err != nil {
		return err
	}

	if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
		p.Runtime.RecordMemory(float64(mem.RSS) / (1024 * 1024))
	} else if err != nil {
		return err
	}

	if cpuPct, err := proc.CPUPercent(); err == nil {
		p.Runtime.RecordCPU(cpuPct)
	} else {
		return err
	}

	return nil
}

// IsNotExist reports whether err indicates the OS process is simply gone —
// a transient the poll loop swallows rather than propagates.
func IsNotExist(err error) bool {
	return err == process.ErrorProcessNotRunning
}

// Snapshot produces an immutable ProcessStats from p's current RuntimeInfo.
func Snapshot(p *manifest.Process) manifest.ProcessStats {
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
