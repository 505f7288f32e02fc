// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package launcher

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/internal/pkg/limiter"
	"github.com/nsbox/sandbox/internal/pkg/sysfacade"
)

// syncPipeFD is the inherited descriptor the child reads its one-byte
// ready signal from. It is always the first (and only) ExtraFiles entry,
// which os/exec places at fd 3.
const syncPipeFD = 3

// candidateShells is probed in order; the first executable hit wins
// (spec.md §4.D step 8).
var candidateShells = []string{
	"/bin/busybox", "/bin/bash", "/bin/sh", "/bin/dash", "/bin/zsh",
	"/usr/bin/bash", "/usr/bin/sh",
}

// ChildInit is the re-exec entrypoint spawned by Launch. args are the
// arguments following the ChildInitArg marker: root path, memory_mb,
// cpu_cores, and the network flag ("1" for networked mode). It never returns on success — it ends in an exec(2) — and
// returns an error only on failure, matching spec.md §4.D/§7's ChildError.
func ChildInit(args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("child init: expected 4 arguments, got %d", len(args))
	}
	root := args[0]
	memoryMB, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("child init: bad memory_mb %q: %w", args[1], err)
	}
	cpuCores, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("child init: bad cpu_cores %q: %w", args[2], err)
	}
	network := args[3] == "1"

	if err := waitForSync(); err != nil {
		return fmt.Errorf("waiting for parent sync signal: %w", err)
	}

	if err := sysfacade.Chroot(root); err != nil {
		return fmt.Errorf("chroot: %w", err)
	}
	if err := sysfacade.Chdir("/"); err != nil {
		return fmt.Errorf("chdir: %w", err)
	}

	if err := ensureSkeleton(); err != nil {
		return err
	}
	if err := mountProcSys(network); err != nil {
		return err
	}
	if err := populateDev(); err != nil {
		return err
	}

	if err := limiter.Apply(memoryMB, cpuCores); err != nil {
		boxlog.Warningf("resource limiter: %v", err)
	}

	if err := seedConfig(); err != nil {
		boxlog.Warningf("seeding config files: %v", err)
	}

	return execShell()
}

// waitForSync blocks on the sync pipe's read end until the parent's one
// byte arrives, per spec.md §3's Sync channel / §4.D step 1.
func waitForSync() error {
	f := os.NewFile(uintptr(syncPipeFD), "sync-r")
	defer f.Close()

	buf := make([]byte, 1)
	n, err := f.Read(buf)
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("short read on sync pipe")
	}
	return nil
}

func ensureSkeleton() error {
	for _, dir := range []string{"/proc", "/sys", "/dev", "/dev/pts", "/tmp"} {
		if err := sysfacade.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ensuring %s exists: %w", dir, err)
		}
	}
	return nil
}

// mountProcSys implements spec.md §4.D step 4: always mount a fresh
// procfs; for /sys, mount a fresh sysfs in isolated mode or merely rely on
// the host-bound /sys established pre-clone in networked mode.
func mountProcSys(network bool) error {
	if err := sysfacade.Mount("proc", "/proc", "proc", 0, ""); err != nil {
		return fmt.Errorf("mounting /proc: %w", err)
	}

	if network {
		if _, err := os.Stat("/sys/devices"); err != nil {
			boxlog.Warningf("/sys/devices not visible in networked mode: %v", err)
		}
		return nil
	}

	if err := sysfacade.Mount("sysfs", "/sys", "sysfs", 0, ""); err != nil {
		boxlog.Warningf("mounting isolated sysfs: %v", err)
	}
	return nil
}

// populateDev implements spec.md §4.D step 5.
func populateDev() error {
	if err := sysfacade.Mount("tmpfs", "/dev", "tmpfs", 0, ""); err != nil {
		return fmt.Errorf("mounting /dev tmpfs: %w", err)
	}

	nodes := []struct {
		path         string
		major, minor uint32
	}{
		{"/dev/null", 1, 3},
		{"/dev/zero", 1, 5},
		{"/dev/random", 1, 8},
		{"/dev/urandom", 1, 9},
		{"/dev/tty", 5, 0},
	}
	for _, n := range nodes {
		if err := sysfacade.Mknod(n.path, unix.S_IFCHR|0o666, n.major, n.minor); err != nil {
			boxlog.Warningf("mknod %s: %v", n.path, err)
		}
	}

	if err := sysfacade.MkdirAll("/dev/pts", 0o755); err != nil {
		return fmt.Errorf("mkdir /dev/pts: %w", err)
	}
	if err := sysfacade.Mount("devpts", "/dev/pts", "devpts", 0, "gid=5,mode=620,ptmxmode=666"); err != nil {
		boxlog.Warningf("mounting devpts: %v", err)
	}
	if err := sysfacade.Mknod("/dev/ptmx", unix.S_IFCHR|0o666, 5, 2); err != nil {
		boxlog.Debugf("mknod /dev/ptmx: %v", err)
	}
	if err := sysfacade.Mknod("/dev/console", unix.S_IFCHR|0o600, 5, 1); err != nil {
		boxlog.Debugf("mknod /dev/console: %v", err)
	}

	for link, target := range map[string]string{
		"/dev/fd":     "/proc/self/fd",
		"/dev/stdin":  "/proc/self/fd/0",
		"/dev/stdout": "/proc/self/fd/1",
		"/dev/stderr": "/proc/self/fd/2",
	} {
		if err := sysfacade.Symlink(target, link); err != nil {
			boxlog.Debugf("symlink %s -> %s: %v", link, target, err)
		}
	}
	return nil
}

// seedConfig implements spec.md §4.D step 7.
func seedConfig() error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "sandbox"
	}

	if err := writeIfMissing("/etc/resolv.conf", "nameserver 8.8.8.8\n"); err != nil {
		return err
	}
	if err := os.WriteFile("/etc/hostname", []byte(hostname+"\n"), 0o644); err != nil {
		return err
	}
	hosts := fmt.Sprintf("127.0.0.1 localhost\n127.0.1.1 %s\n", hostname)
	if err := os.WriteFile("/etc/hosts", []byte(hosts), 0o644); err != nil {
		return err
	}
	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// execShell implements spec.md §4.D step 8.
func execShell() error {
	env := []string{
		"TERM=xterm",
		"TERMINFO=/usr/share/terminfo",
		"PATH=/bin:/usr/bin:/sbin:/usr/sbin",
		"HOME=/",
		"USER=root",
		"SHELL=/bin/sh",
	}

	for _, shell := range candidateShells {
		if !isExecutable(shell) {
			continue
		}
		argv := []string{shell, "sh"}
		if shell != "/bin/busybox" {
			argv = []string{shell}
		}
		return sysfacade.Exec(shell, argv, env)
	}
	return fmt.Errorf("no candidate shell found under %v", candidateShells)
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
