// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"fmt"
	"os"

	"github.com/nsbox/sandbox/internal/pkg/boxconf"
	"github.com/nsbox/sandbox/internal/pkg/launcher"
	"github.com/nsbox/sandbox/internal/pkg/registry"
)

// runEnter implements spec.md §4.H's enter dispatch: look the named
// sandbox up in the registry (first match wins, per spec.md §8 invariant
// 2) and relaunch with that exact config, without appending a new entry.
func runEnter(paths boxconf.Paths) error {
	if flagName == "" {
		return fmt.Errorf("-s <name> is required for -e")
	}

	reg := registry.Open(paths.Registry)
	d, ok, err := reg.Lookup(flagName)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no sandbox named %q in the registry", flagName)
	}

	if d.Config.Network && os.Geteuid() != 0 {
		return fmt.Errorf("sandbox %q requires network mode, which requires root", flagName)
	}

	code, err := launcher.Launch(paths.SandboxRoot, d.Config, false)
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}
