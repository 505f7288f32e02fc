// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package boxconf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPaths(t *testing.T) {
	p := Default()
	require.Equal(t, defaultSandboxRoot, p.SandboxRoot)
	require.Equal(t, defaultRegistry, p.Registry)
	require.Equal(t, defaultLogFile, p.LogFile)
}

func TestLoadFallsBackToDefaultsWithoutConfFile(t *testing.T) {
	p, err := Load()
	require.NoError(t, err)
	require.NotEmpty(t, p.SandboxRoot)
	require.NotEmpty(t, p.Registry)
	require.NotEmpty(t, p.LogFile)
}
