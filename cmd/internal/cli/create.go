// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"fmt"
	"os"

	"github.com/nsbox/sandbox/internal/pkg/boxconf"
	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/internal/pkg/launcher"
	"github.com/nsbox/sandbox/internal/pkg/netplumb"
	"github.com/nsbox/sandbox/internal/pkg/registry"
	"github.com/nsbox/sandbox/internal/pkg/sandbox"
)

// runCreate implements spec.md §4.H's create dispatch: preflight, build
// SandboxConfig, append the registry entry, clone, and (networked mode
// only) perform the privileged host-network plumbing before launch.
func runCreate(paths boxconf.Paths) error {
	if flagName == "" {
		return fmt.Errorf("-s <name> is required for -c")
	}

	cfg := sandbox.Config{MemoryMB: flagMemoryMB, CPUCores: flagCPUCores, Network: flagNetwork}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if flagNetwork && os.Geteuid() != 0 {
		return fmt.Errorf("-n requires root")
	}

	if flagDryRun {
		return launcher.LaunchDryRun(paths.SandboxRoot, cfg)
	}

	runPreflight()

	if flagNetwork {
		plumbHostNetwork()
	}

	reg := registry.Open(paths.Registry)
	if _, err := reg.Append(flagName, cfg); err != nil {
		return err
	}

	code, err := launcher.Launch(paths.SandboxRoot, cfg, true)
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// plumbHostNetwork performs the host-side network setup of spec.md §4.F.
// None of its steps are fatal to the launch: the original C implementation's
// enable_ip_forward() and setup_nat_rules() (original_source/src/main.c)
// only log failures here and always continue.
func plumbHostNetwork() {
	p := netplumb.New()
	if err := p.EnsureResolvConf(flagNameserver); err != nil {
		boxlog.Warningf("resolv.conf setup: %v", err)
	}
	if err := p.EnableIPForwarding(); err != nil {
		boxlog.Warningf("enabling IP forwarding: %v", err)
	}
	if err := p.InstallFirewallRules("eth0"); err != nil {
		boxlog.Warningf("installing firewall rules: %v", err)
	}
	if err := p.InstallHostPackages(); err != nil {
		boxlog.Warningf("installing host packages: %v", err)
	}
}

// runPreflight logs the advisory checks of spec.md §4.H and fails fast
// only on an unwritable /tmp.
func runPreflight() {
	if !launcher.HasUnprivilegedUserNamespaces() && !flagNetwork {
		boxlog.Warningf("unprivileged user namespaces appear unavailable; isolated sandboxes may fail")
	}
	if !launcher.HasCandidateShell() {
		boxlog.Warningf("no candidate shell found on host; the sandbox shell may fail to start")
	}
	if !launcher.TmpWritable() {
		boxlog.Fatalf("/tmp is not writable")
	}
}
