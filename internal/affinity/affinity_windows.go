//go:build windows

package affinity

import (
	"golang.org/x/sys/windows"
)

// Supported reports that Windows supports pinning a child to specific CPUs.
const Supported = true

// Set pins pid to the given CPU indices via SetProcessAffinityMask.
func Set(pid int, cpus []int) error {
	handle, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION|windows.PROCESS_QUERY_INFORMATION, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(handle)

	var mask uintptr
	for _, cpu := range cpus {
		mask |= 1 << uint(cpu)
	}
	return windows.SetProcessAffinityMask(handle, mask)
}
