// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Command sandbox is the program named in spec.md §6: install-relative
// bin/sandbox, carrying the create/enter/delete/list action flags.
package main

import (
	"fmt"
	"os"

	"github.com/nsbox/sandbox/cmd/internal/cli"
	"github.com/nsbox/sandbox/internal/pkg/launcher"
)

func main() {
	// The launcher re-execs this same binary as its own child-init
	// entrypoint (SPEC_FULL.md §4.C) rather than shelling out to a
	// separate helper. Recognize that argv shape before cobra ever sees
	// it — a child inside a fresh PID/mount/user namespace has no
	// business parsing CLI flags.
	if len(os.Args) > 1 && os.Args[1] == launcher.ChildInitArg {
		if err := launcher.ChildInit(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := cli.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
