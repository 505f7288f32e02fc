// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package netplumb performs the privileged host-network mutations of
// spec.md §4.F. Per spec.md §9's design note, this is the one place
// shelling out is natural: the Plumber interface wraps exactly the
// sysctl/iptables/apt-get invocations the spec names, nothing more. These
// mutations are intentionally not reverted on delete and not idempotent —
// repeat invocations add duplicate iptables rules, matching spec.md §4.F.
package netplumb

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
)

const defaultNameserver = "8.8.8.8"

// Plumber performs the host-side network setup for a networked sandbox.
type Plumber interface {
	EnableIPForwarding() error
	InstallFirewallRules(iface string) error
	EnsureResolvConf(nameserver string) error
	InstallHostPackages() error
}

// shellPlumber is the only implementation: every method shells out to the
// exact command spec.md §4.F names.
type shellPlumber struct{}

// New returns the host network plumber.
func New() Plumber { return shellPlumber{} }

func (shellPlumber) EnableIPForwarding() error {
	return run("sysctl", "-w", "net.ipv4.ip_forward=1")
}

func (shellPlumber) InstallFirewallRules(iface string) error {
	rules := [][]string{
		{"-t", "nat", "-A", "POSTROUTING", "-o", iface, "-j", "MASQUERADE"},
		{"-A", "FORWARD", "-i", iface, "-o", iface, "-m", "state", "--state", "RELATED,ESTABLISHED", "-j", "ACCEPT"},
		{"-A", "FORWARD", "-i", iface, "-o", iface, "-j", "ACCEPT"},
	}
	for _, args := range rules {
		if err := run("iptables", args...); err != nil {
			return err
		}
	}
	return nil
}

func (shellPlumber) EnsureResolvConf(nameserver string) error {
	if nameserver == "" {
		nameserver = defaultNameserver
	}
	info, err := os.Stat("/etc/resolv.conf")
	if err == nil && info.Size() > 0 {
		return nil
	}
	return os.WriteFile("/etc/resolv.conf", []byte(fmt.Sprintf("nameserver %s\n", nameserver)), 0o644)
}

// InstallHostPackages is non-fatal on failure per spec.md §4.F step 4: a
// host without apt (or without network access yet) should not abort the
// sandbox launch over optional tooling.
func (shellPlumber) InstallHostPackages() error {
	if err := run("apt-get", "update"); err != nil {
		boxlog.Warningf("apt-get update failed (non-fatal): %v", err)
		return nil
	}
	pkgs := []string{"iptables", "net-tools", "dnsutils", "sudo", "iproute2", "curl", "wget"}
	args := append([]string{"install", "-y"}, pkgs...)
	if err := run("apt-get", args...); err != nil {
		boxlog.Warningf("apt-get install failed (non-fatal): %v", err)
	}
	return nil
}

func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, out)
	}
	return nil
}
