// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package launcher

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/pkg/util/namespaces"
)

// HasUnprivilegedUserNamespaces implements the CLI's preflight check of
// spec.md §4.H. Root can always create user namespaces; otherwise this
// probes by actually attempting a trivial CLONE_NEWUSER clone, grounded on
// ehrlich-b-wingthing's probeUserNamespace — the kernel knob
// (/proc/sys/kernel/unprivileged_userns_clone) some distributions expose
// is advisory at best, a live probe is the only reliable signal.
func HasUnprivilegedUserNamespaces() bool {
	if os.Geteuid() == 0 {
		return true
	}

	if inside, setgroupsAllowed := namespaces.IsInsideUserNamespace(os.Getpid()); inside && !setgroupsAllowed {
		// Already inside a user namespace that denies setgroups: a nested
		// CLONE_NEWUSER is still possible, but the probe below exercises
		// the same GidMappingsEnableSetgroups=false path Launch takes, so
		// it remains a faithful signal rather than a reason to short-circuit.
		boxlog.Debugf("already inside a user namespace with setgroups denied")
	}

	cmd := exec.Command("true")
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: syscall.CLONE_NEWUSER,
		UidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: os.Getuid(), Size: 1},
		},
		GidMappings: []syscall.SysProcIDMap{
			{ContainerID: 0, HostID: os.Getgid(), Size: 1},
		},
	}
	if err := cmd.Run(); err != nil {
		boxlog.Debugf("unprivileged user namespace probe failed: %v", err)
		return false
	}
	return true
}

// HasCandidateShell reports whether at least one of the shells
// execShell() would probe exists on the host, so a doomed launch can warn
// before it clones a child that is certain to fail at exec.
func HasCandidateShell() bool {
	for _, shell := range candidateShells {
		if isExecutable(shell) {
			return true
		}
	}
	return false
}

// TmpWritable reports whether /tmp (the parent of the sandbox root, by
// default) accepts a test file. Its absence is the one fatal preflight
// condition per spec.md §4.H.
func TmpWritable() bool {
	f, err := os.CreateTemp("/tmp", "sandbox-preflight-")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}
