// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cmdline

import "github.com/spf13/cobra"

// EnvPrefix is the prefix environment-variable overrides are looked up
// under (e.g. "SANDBOX_" for a flag whose EnvKeys include "MEMORY").
const EnvPrefix = "SANDBOX_"

// Manager is a trimmed version of the teacher's cmdManager: it registers
// Flag descriptors against cobra commands and applies their environment
// overrides. The full multi-command registration tree the teacher builds
// around this (addCmdInit, RegisterSubCmd, docs-package wiring) exists to
// manage dozens of subcommands; this repository's single-command CLI wires
// cobra directly and uses Manager only for its flag/env behavior.
type Manager struct {
	*flagManager
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{flagManager: newFlagManager()}
}

// RegisterFlagForCmd registers flag against one or more commands.
func (m *Manager) RegisterFlagForCmd(flag *Flag, cmds ...*cobra.Command) error {
	return m.registerFlagForCmd(flag, cmds)
}

// UpdateCmdFlagFromEnv applies environment-variable overrides (under
// EnvPrefix) to every flag previously registered against cmd.
func (m *Manager) UpdateCmdFlagFromEnv(cmd *cobra.Command) error {
	return m.updateCmdFlagFromEnv(cmd, EnvPrefix)
}
