// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package launcher is the namespace launcher of spec.md §4.C and the
// child-side counterpart of spec.md §4.D. Singularity's own launcher hands
// off to a privileged cgo "starter" binary that this pack does not carry;
// the pure-Go substitute used throughout the rest of the retrieved
// examples — os/exec's Cloneflags/UidMappings plus a self-re-exec — is
// used instead, grounded on ehrlich-b-wingthing's internal/sandbox package.
package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/internal/pkg/rootfs"
	"github.com/nsbox/sandbox/internal/pkg/rootfs/deps"
	"github.com/nsbox/sandbox/internal/pkg/sandbox"
	"github.com/nsbox/sandbox/pkg/util/namespaces"
)

// ChildInitArg is the argv[1] value cmd/sandbox/main.go checks for before
// handing off to cobra, the re-exec entrypoint this package's Launch
// spawns itself as.
const ChildInitArg = "__child_init"

// Launch runs one full create/enter cycle: optionally (re)builds the
// rootfs, clones a child into the namespace set spec.md §4.C names,
// installs UID/GID maps via the idiomatic os/exec mechanism, signals the
// child over the sync pipe, and waits for it. It returns the child's exit
// code.
func Launch(root string, cfg sandbox.Config, buildRootfs bool) (int, error) {
	return launch(root, cfg, buildRootfs, false)
}

// LaunchDryRun behaves like Launch but only logs the rootfs operations a
// real create would perform (SPEC_FULL.md §6's -v/--dry-run) instead of
// executing them, and never clones a child.
func LaunchDryRun(root string, cfg sandbox.Config) error {
	_, err := launch(root, cfg, true, true)
	return err
}

func launch(root string, cfg sandbox.Config, buildRootfs, dryRun bool) (int, error) {
	if err := ensureRoot(root, cfg.Network, buildRootfs, dryRun); err != nil {
		return 1, fmt.Errorf("preparing rootfs: %w", err)
	}
	if dryRun {
		return 0, nil
	}

	flags := namespaceFlags(cfg.Network)

	pipeR, pipeW, err := os.Pipe()
	if err != nil {
		return 1, fmt.Errorf("allocating sync pipe: %w", err)
	}

	self, err := os.Executable()
	if err != nil {
		pipeR.Close()
		pipeW.Close()
		return 1, fmt.Errorf("resolving self executable: %w", err)
	}

	network := "0"
	if cfg.Network {
		network = "1"
	}
	cmd := exec.Command(self, ChildInitArg, root, fmt.Sprint(cfg.MemoryMB), fmt.Sprint(cfg.CPUCores), network)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.ExtraFiles = []*os.File{pipeR}

	attr := &syscall.SysProcAttr{Cloneflags: flags}
	if flags&unix.CLONE_NEWUSER != 0 {
		// The idiomatic Go substitute for the manual parent-side
		// "write setgroups=deny, then uid_map, then gid_map" sequence of
		// spec.md §4.C step 3: os/exec performs that exact ordering
		// internally before the clone's execve is allowed to proceed,
		// which is a strictly stronger guarantee than our own sync byte
		// below.
		hostUID, err := namespaces.HostUID()
		if err != nil {
			hostUID = uint32(os.Getuid())
			boxlog.Debugf("resolving host UID: %v, using current UID", err)
		}
		attr.UidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: int(hostUID), Size: 1}}
		attr.GidMappings = []syscall.SysProcIDMap{{ContainerID: 0, HostID: os.Getgid(), Size: 1}}
		attr.GidMappingsEnableSetgroups = false
	}
	cmd.SysProcAttr = attr

	if err := cmd.Start(); err != nil {
		pipeR.Close()
		pipeW.Close()
		return 1, fmt.Errorf("cloning child: %w", err)
	}

	// By the time Start returns, the child exists and (if CLONE_NEWUSER
	// was requested) its UID/GID maps are already installed — os/exec
	// will not release the clone past its internal handshake otherwise.
	// The sync byte below is still sent, satisfying spec.md §3's Sync
	// channel contract as an explicit, observable ready signal the child
	// blocks on before touching any namespace-dependent syscall.
	pipeR.Close()
	if _, err := pipeW.Write([]byte{1}); err != nil {
		boxlog.Warningf("writing sync byte: %v", err)
	}
	pipeW.Close()

	err = cmd.Wait()
	return exitCodeOf(cmd, err)
}

func exitCodeOf(cmd *exec.Cmd, waitErr error) (int, error) {
	if waitErr == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return 1, fmt.Errorf("waiting for child: %w", waitErr)
}

// namespaceFlags implements spec.md §4.C's namespace flag set: PID, mount
// and UTS are always present; USER and NET are added only for isolated
// (network=false) launches.
func namespaceFlags(network bool) uintptr {
	flags := uintptr(unix.CLONE_NEWPID | unix.CLONE_NEWNS | unix.CLONE_NEWUTS)
	if !network {
		flags |= unix.CLONE_NEWUSER | unix.CLONE_NEWNET
	}
	return flags
}

// ensureRoot mounts and, on create, populates the sandbox root. On enter
// it re-mounts only if not already busy, matching spec.md §3: "a tmpfs is
// mounted there at create and again at enter if not busy."
func ensureRoot(root string, network, build, dryRun bool) error {
	tracer := deps.Default()
	b := rootfs.New(root, tracer)
	b.DryRun = dryRun

	if err := b.MountRoot(); err != nil {
		if !build && errors.Is(err, unix.EBUSY) {
			return nil
		}
		if !build {
			boxlog.Debugf("sandbox root mount attempt on enter: %v", err)
			return nil
		}
		return err
	}

	if !build {
		return nil
	}

	var ingredients []rootfs.Ingredient
	if network {
		ingredients = rootfs.NetworkedIngredients()
	} else {
		ingredients = rootfs.IsolatedIngredients()
	}
	return b.Apply(ingredients)
}
