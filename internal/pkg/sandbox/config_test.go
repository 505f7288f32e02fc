// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package sandbox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsNonPositiveMemory(t *testing.T) {
	require.Error(t, Config{MemoryMB: 0}.Validate())
	require.Error(t, Config{MemoryMB: -1}.Validate())
}

func TestValidateRejectsNegativeCores(t *testing.T) {
	require.Error(t, Config{MemoryMB: 256, CPUCores: -1}.Validate())
}

func TestValidateAcceptsZeroCores(t *testing.T) {
	require.NoError(t, Config{MemoryMB: 256, CPUCores: 0}.Validate())
}

func TestMemoryBytes(t *testing.T) {
	require.Equal(t, uint64(256)<<20, Config{MemoryMB: 256}.MemoryBytes())
}
