// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package limiter

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
)

// ApplyAffinity implements spec.md §4.E's CPU cap: if cpuCores is positive
// and less than the number of online CPUs, restrict the current task to
// CPUs [0, cpuCores). Zero or an out-of-range value leaves the mask
// untouched.
func ApplyAffinity(cpuCores int) error {
	if cpuCores <= 0 {
		return nil
	}

	online := runtime.NumCPU()
	if cpuCores >= online {
		boxlog.Debugf("requested %d cores >= %d online, no affinity restriction applied", cpuCores, online)
		return nil
	}

	var set unix.CPUSet
	set.Zero()
	for i := 0; i < cpuCores; i++ {
		set.Set(i)
	}

	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return err
	}
	boxlog.Infof("applied CPU affinity mask for %d core(s)", cpuCores)
	return nil
}

// Apply runs the resource limiter's full sequence: CPU affinity before
// memory, per spec.md §4.E's explicit ordering requirement.
func Apply(memoryMB, cpuCores int) error {
	if err := ApplyAffinity(cpuCores); err != nil {
		return err
	}
	return ApplyMemory(memoryMB)
}
