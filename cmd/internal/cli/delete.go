// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"

	"github.com/nsbox/sandbox/internal/pkg/boxconf"
	"github.com/nsbox/sandbox/internal/pkg/boxlog"
)

// runDelete implements spec.md §4.G/§7's delete: unmount the sandbox root
// (and anything bind-mounted under it in networked mode) and remove the
// directory. The registry is never touched — spec.md §3/§8 scenario S4.
func runDelete(paths boxconf.Paths) error {
	if err := unmountTree(paths.SandboxRoot); err != nil {
		boxlog.Warningf("unmounting sandbox root: %v", err)
	}

	if err := os.RemoveAll(paths.SandboxRoot); err != nil {
		return fmt.Errorf("removing sandbox root %s: %w", paths.SandboxRoot, err)
	}
	return nil
}

// unmountTree finds every mount point under root (using moby/sys/mountinfo
// to parse /proc/self/mountinfo rather than hand-rolling it) and unmounts
// them deepest-first, so nested bind mounts from the networked build don't
// block the root tmpfs's own unmount.
func unmountTree(root string) error {
	mounts, err := mountinfo.GetMounts(mountinfo.PrefixFilter(root))
	if err != nil {
		return fmt.Errorf("reading mountinfo: %w", err)
	}

	sort.Slice(mounts, func(i, j int) bool {
		return strings.Count(mounts[i].Mountpoint, "/") > strings.Count(mounts[j].Mountpoint, "/")
	})

	var firstErr error
	for _, m := range mounts {
		if err := unix.Unmount(m.Mountpoint, unix.MNT_DETACH); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("unmounting %s: %w", m.Mountpoint, err)
		}
	}
	return firstErr
}
