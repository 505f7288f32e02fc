// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package boxconf resolves the engine's handful of fixed paths. spec.md §9
// calls these out explicitly as "configuration with sensible defaults
// derivable from the executable's directory" rather than true compile-time
// constants. The defaults are fixed absolute paths under /tmp and are not
// derived from the executable's location; the executable's location only
// determines where the optional etc/sandbox.conf that overrides them is
// looked up (the etc directory beside the executable's own directory).
package boxconf

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Paths holds every fixed, install-relative location the engine touches.
type Paths struct {
	// SandboxRoot is the single-slot, process-global rootfs mount point.
	SandboxRoot string
	// Registry is the append-only sandbox descriptor log.
	Registry string
	// LogFile is the plain-text diagnostic event log (spec.md §6).
	LogFile string
}

const (
	defaultSandboxRoot = "/tmp/sandbox_root"
	defaultRegistry    = "/tmp/sandbox_registry"
	defaultLogFile     = "/tmp/sandbox.log"
)

// Default returns the built-in paths, unconditionally. These match spec.md
// §6's examples and are what every invariant/scenario in spec.md §8
// assumes.
func Default() Paths {
	return Paths{
		SandboxRoot: defaultSandboxRoot,
		Registry:    defaultRegistry,
		LogFile:     defaultLogFile,
	}
}

// Load starts from Default and overlays any directives found in
// <executable dir>/../etc/sandbox.conf, if present. A missing
// file is not an error: the engine runs fine on defaults alone.
func Load() (Paths, error) {
	p := Default()

	exe, err := os.Executable()
	if err != nil {
		return p, nil //nolint:nilerr
	}
	confPath := filepath.Join(filepath.Dir(exe), "..", "etc", "sandbox.conf")

	f, err := os.Open(confPath)
	if err != nil {
		return p, nil //nolint:nilerr
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		switch key {
		case "sandbox_root":
			p.SandboxRoot = val
		case "registry":
			p.Registry = val
		case "log_file":
			p.LogFile = val
		}
	}
	return p, scanner.Err()
}
