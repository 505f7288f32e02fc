// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package deps

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultPicksATracer(t *testing.T) {
	tracer := Default()
	require.NotNil(t, tracer)
}

func TestResolveInSearchDirs(t *testing.T) {
	// libc is present on every Linux test host this would run on; absence
	// should simply mean "not found", never a panic.
	_, _ = resolveInSearchDirs("libc.so.6")
}
