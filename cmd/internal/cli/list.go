// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"fmt"
	"time"

	"github.com/nsbox/sandbox/internal/pkg/boxconf"
	"github.com/nsbox/sandbox/internal/pkg/registry"
)

// runList implements the supplemental -l/--list action (SPEC_FULL.md
// §4.H): a plain-text rendering of the registry, the CLI-side counterpart
// of the out-of-scope GUI's own registry-backed views.
func runList(paths boxconf.Paths) error {
	reg := registry.Open(paths.Registry)
	all, err := reg.All()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		fmt.Println("no sandboxes registered")
		return nil
	}

	fmt.Printf("%-20s %10s %6s %8s %s\n", "NAME", "MEMORY_MB", "CORES", "NETWORK", "CREATED")
	for _, d := range all {
		network := "off"
		if d.Config.Network {
			network = "on"
		}
		created := time.Unix(d.CreatedAt, 0).Format(time.RFC3339)
		fmt.Printf("%-20s %10d %6d %8s %s\n", d.Name, d.Config.MemoryMB, d.Config.CPUCores, network, created)
	}
	return nil
}
