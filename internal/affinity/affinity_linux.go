//go:build linux

package affinity

import (
	"golang.org/x/sys/unix"
)

// Supported reports that Linux supports pinning a child to specific CPUs.
const Supported = true

// Set pins pid to the given CPU indices via sched_setaffinity.
func Set(pid int, cpus []int) error {
	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}
	return unix.SchedSetaffinity(pid, &set)
}
