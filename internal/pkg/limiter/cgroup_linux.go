// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package limiter applies the per-launch resource caps of spec.md §4.E:
// a cgroup-v2 memory ceiling (falling back to RLIMIT_AS) and a CPU
// affinity mask. Both are applied inside the child, after chroot and
// before exec.
package limiter

import (
	"fmt"
	"os"
	"path/filepath"

	lccgroups "github.com/opencontainers/runc/libcontainer/cgroups"
	"golang.org/x/sys/unix"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/internal/pkg/sysfacade"
)

const unifiedMountPoint = "/sys/fs/cgroup"

// cgroupPathForPID mirrors the teacher's pidToPath: it resolves the
// unified-hierarchy cgroup a process currently lives in.
func cgroupPathForPID(pid int) (string, error) {
	paths, err := lccgroups.ParseCgroupFile(fmt.Sprintf("/proc/%d/cgroup", pid))
	if err != nil {
		return "", fmt.Errorf("parsing cgroup file: %w", err)
	}
	path, ok := paths[""]
	if !ok {
		return "", fmt.Errorf("no unified cgroup entry for pid %d", pid)
	}
	return filepath.Join(unifiedMountPoint, path), nil
}

// ApplyMemory implements spec.md §4.E's memory cap: create
// /sys/fs/cgroup/sandbox_<pid>, write memory.max, move the current task
// into it. On any failure it falls back to RLIMIT_AS with soft =
// memoryBytes and hard = 2x soft.
func ApplyMemory(memoryMB int) error {
	if memoryMB <= 0 {
		return nil
	}
	memoryBytes := uint64(memoryMB) << 20

	if err := tryMemoryCgroup(memoryMB); err != nil {
		boxlog.Warningf("cgroup-v2 memory limit unavailable (%v), falling back to RLIMIT_AS", err)
		return applyMemoryRlimit(memoryBytes)
	}
	boxlog.Infof("applied cgroup-v2 memory.max=%dM", memoryMB)
	return nil
}

func tryMemoryCgroup(memoryMB int) error {
	if !lccgroups.IsCgroup2UnifiedMode() {
		return fmt.Errorf("cgroup-v2 unified hierarchy not mounted")
	}

	pid := os.Getpid()
	dir := filepath.Join(unifiedMountPoint, fmt.Sprintf("sandbox_%d", pid))

	enableMemoryController(pid)

	if err := sysfacade.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cgroup dir: %w", err)
	}
	if err := sysfacade.WriteFile(filepath.Join(dir, "memory.max"), fmt.Sprintf("%dM\n", memoryMB)); err != nil {
		return fmt.Errorf("writing memory.max: %w", err)
	}
	if err := sysfacade.WriteFile(filepath.Join(dir, "cgroup.procs"), fmt.Sprintf("%d\n", pid)); err != nil {
		return fmt.Errorf("joining cgroup: %w", err)
	}
	return nil
}

// enableMemoryController best-effort enables the memory controller on the
// parent cgroup so memory.max exists in the child directory. It makes a
// single attempt and does not retry. Failures (EBUSY from an "internal
// process" already occupying the parent, or a read-only subtree_control on
// a restricted host) are only logged: without the controller the child
// directory has no memory.max file, so tryMemoryCgroup's write fails and
// ApplyMemory falls back to RLIMIT_AS.
func enableMemoryController(pid int) {
	parent, err := cgroupPathForPID(pid)
	if err != nil {
		boxlog.Debugf("enableMemoryController: %v", err)
		return
	}
	if err := sysfacade.WriteFile(filepath.Join(parent, "cgroup.subtree_control"), "+memory\n"); err != nil {
		boxlog.Debugf("enabling memory controller on %s: %v", parent, err)
	}
}

func applyMemoryRlimit(memoryBytes uint64) error {
	soft := memoryBytes
	hard := 2 * memoryBytes
	return sysfacade.Setrlimit(unix.RLIMIT_AS, &unix.Rlimit{Cur: soft, Max: hard})
}
