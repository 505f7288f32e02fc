// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nsbox/sandbox/internal/pkg/sandbox"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry")
	r := Open(path)

	cfg := sandbox.Config{MemoryMB: 256, CPUCores: 2, Network: false}
	before := time.Now().Unix()
	d, err := r.Append("alpha", cfg)
	require.NoError(t, err)
	require.Equal(t, "alpha", d.Name)
	require.WithinDuration(t, time.Unix(before, 0), time.Unix(d.CreatedAt, 0), 5*time.Second)

	got, ok, err := r.Lookup("alpha")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg, got.Config)
}

func TestLookupFirstMatchWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry")
	r := Open(path)

	_, err := r.Append("beta", sandbox.Config{MemoryMB: 128, CPUCores: 1})
	require.NoError(t, err)
	_, err = r.Append("beta", sandbox.Config{MemoryMB: 999, CPUCores: 8})
	require.NoError(t, err)

	got, ok, err := r.Lookup("beta")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 128, got.Config.MemoryMB)
}

func TestLookupMissingFileIsNotError(t *testing.T) {
	r := Open(filepath.Join(t.TempDir(), "does-not-exist"))
	_, ok, err := r.Lookup("anything")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAppendDoesNotDeduplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry")
	r := Open(path)

	_, err := r.Append("gamma", sandbox.Config{MemoryMB: 64, CPUCores: 0})
	require.NoError(t, err)
	_, err = r.Append("gamma", sandbox.Config{MemoryMB: 64, CPUCores: 0})
	require.NoError(t, err)

	all, err := r.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestAllSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry")
	require.NoError(t, os.WriteFile(path, []byte("not a valid line\nalpha 256 2 0 1700000000\n"), 0o644))

	r := Open(path)
	all, err := r.All()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "alpha", all[0].Name)
}
