// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package cli implements the CLI dispatcher of spec.md §4.H: one cobra
// command carrying the -c/-e/-d action flags and their -m/-p/-n/-s
// parameters, enforcing exactly-one-action exclusivity before dispatching
// to create, enter or delete.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nsbox/sandbox/internal/pkg/boxconf"
	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/pkg/cmdline"
)

var (
	doCreate bool
	doEnter  bool
	doDelete bool
	doList   bool

	flagMemoryMB   int
	flagCPUCores   int
	flagNetwork    bool
	flagName       string
	flagDryRun     bool
	flagNameserver string
)

var manager = cmdline.NewManager()

// RootCmd is the `sandbox` program's single command, per spec.md §6's flat
// CLI contract.
var RootCmd = &cobra.Command{
	Use:                   "sandbox",
	Short:                 "create, enter, and destroy lightweight Linux sandboxes",
	DisableFlagsInUseLine: true,
	SilenceUsage:          true,
	SilenceErrors:         true,
	RunE:                  run,
}

func init() {
	registerFlag(&cmdline.Flag{
		ID: "create", Value: &doCreate, DefaultValue: false,
		Name: "create", ShortHand: "c", Usage: "create a new sandbox",
	})
	registerFlag(&cmdline.Flag{
		ID: "enter", Value: &doEnter, DefaultValue: false,
		Name: "enter", ShortHand: "e", Usage: "enter an existing sandbox",
	})
	registerFlag(&cmdline.Flag{
		ID: "delete", Value: &doDelete, DefaultValue: false,
		Name: "delete", ShortHand: "d", Usage: "destroy the sandbox root",
	})
	registerFlag(&cmdline.Flag{
		ID: "list", Value: &doList, DefaultValue: false,
		Name: "list", ShortHand: "l", Usage: "list registered sandboxes",
	})
	registerFlag(&cmdline.Flag{
		ID: "memory", Value: &flagMemoryMB, DefaultValue: 1024,
		Name: "memory", ShortHand: "m", Usage: "memory cap in MB",
		EnvKeys: []string{"MEMORY"},
	})
	registerFlag(&cmdline.Flag{
		ID: "cpu", Value: &flagCPUCores, DefaultValue: 0,
		Name: "cpu", ShortHand: "p", Usage: "CPU core cap (0 = no affinity restriction)",
		EnvKeys: []string{"CPU"},
	})
	registerFlag(&cmdline.Flag{
		ID: "network", Value: &flagNetwork, DefaultValue: false,
		Name: "network", ShortHand: "n", Usage: "enable network (requires root)",
	})
	registerFlag(&cmdline.Flag{
		ID: "name", Value: &flagName, DefaultValue: "",
		Name: "name", ShortHand: "s", Usage: "registry key naming the sandbox",
	})
	registerFlag(&cmdline.Flag{
		ID: "dry-run", Value: &flagDryRun, DefaultValue: false,
		Name: "dry-run", ShortHand: "v", Usage: "log planned rootfs operations without executing them",
	})
	registerFlag(&cmdline.Flag{
		ID: "resolv-nameserver", Value: &flagNameserver, DefaultValue: "",
		Name: "resolv-nameserver", Usage: "DNS server written to /etc/resolv.conf when absent (default 8.8.8.8)",
		EnvKeys: []string{"RESOLV_NAMESERVER"},
	})
}

func registerFlag(f *cmdline.Flag) {
	if err := manager.RegisterFlagForCmd(f, RootCmd); err != nil {
		panic(fmt.Sprintf("registering flag %s: %v", f.Name, err))
	}
}

func run(cmd *cobra.Command, _ []string) error {
	if err := manager.UpdateCmdFlagFromEnv(cmd); err != nil {
		return err
	}

	boxlog.SetVerbose(flagDryRun)

	paths, err := boxconf.Load()
	if err != nil {
		return err
	}

	if logFile, err := os.OpenFile(paths.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
		boxlog.AddEventWriter(logFile)
	}

	action, err := chooseAction()
	if err != nil {
		return err
	}

	switch action {
	case actionList:
		return runList(paths)
	case actionCreate:
		return runCreate(paths)
	case actionEnter:
		return runEnter(paths)
	case actionDelete:
		return runDelete(paths)
	}
	return fmt.Errorf("unreachable: unknown action")
}

type action int

const (
	actionNone action = iota
	actionCreate
	actionEnter
	actionDelete
	actionList
)

// chooseAction enforces spec.md §4.H/§8 scenarios S5/S6: exactly one of
// -c/-e/-d is required (list is an additional, independent action that
// does not participate in that exclusivity group since it touches neither
// the launcher nor the rootfs).
func chooseAction() (action, error) {
	if doList {
		return actionList, nil
	}

	count := 0
	var chosen action
	if doCreate {
		count++
		chosen = actionCreate
	}
	if doEnter {
		count++
		chosen = actionEnter
	}
	if doDelete {
		count++
		chosen = actionDelete
	}

	switch count {
	case 0:
		return actionNone, fmt.Errorf("one of -c/-e/-d is required")
	case 1:
		return chosen, nil
	default:
		return actionNone, fmt.Errorf("-c/-e/-d are mutually exclusive")
	}
}
