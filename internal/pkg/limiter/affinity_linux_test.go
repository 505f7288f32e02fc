// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package limiter

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestApplyAffinityZeroIsNoop(t *testing.T) {
	require.NoError(t, ApplyAffinity(0))
}

func TestApplyAffinityAboveOnlineIsNoop(t *testing.T) {
	require.NoError(t, ApplyAffinity(runtime.NumCPU()+1))
}

func TestApplyAffinityRestrictsMaskPopcount(t *testing.T) {
	if runtime.NumCPU() < 2 {
		t.Skip("test host has fewer than 2 CPUs")
	}

	var before unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &before))

	require.NoError(t, ApplyAffinity(1))

	var after unix.CPUSet
	require.NoError(t, unix.SchedGetaffinity(0, &after))
	require.Equal(t, 1, after.Count())
}
