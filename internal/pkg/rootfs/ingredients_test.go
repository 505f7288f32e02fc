// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rootfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsolatedIngredientsSeedsPasswdAndGroup(t *testing.T) {
	list := IsolatedIngredients()

	var sawPasswd, sawGroup, sawDirSkeleton bool
	for _, ing := range list {
		if ing.Kind == KindSeedFile && ing.Path == "/etc/passwd" {
			sawPasswd = true
		}
		if ing.Kind == KindSeedFile && ing.Path == "/etc/group" {
			sawGroup = true
		}
		if ing.Kind == KindDir && ing.Path == "/dev" {
			sawDirSkeleton = true
		}
	}
	require.True(t, sawPasswd)
	require.True(t, sawGroup)
	require.True(t, sawDirSkeleton)
}

func TestNetworkedIngredientsBindsResolvConf(t *testing.T) {
	list := NetworkedIngredients()

	var sawResolvConf, sawSysRecursive bool
	for _, ing := range list {
		if ing.Kind == KindBind && ing.Path == "/etc/resolv.conf" {
			sawResolvConf = true
		}
		if ing.Kind == KindBindRecursive && ing.Path == "/sys" {
			sawSysRecursive = true
		}
	}
	require.True(t, sawResolvConf)
	require.True(t, sawSysRecursive)
}

func TestIsolatedIngredientsCopiesTerminfoInsteadOfBinding(t *testing.T) {
	list := IsolatedIngredients()

	var sawCopyDir bool
	for _, ing := range list {
		if ing.Path != "/usr/share/terminfo" {
			continue
		}
		require.NotEqual(t, KindBind, ing.Kind, "isolated terminfo must be copied, not bind-mounted from the host")
		require.Equal(t, KindCopyDir, ing.Kind)
		sawCopyDir = true
	}
	require.True(t, sawCopyDir)
}

func TestSkeletonDirIngredientsAreNotOptional(t *testing.T) {
	for _, ing := range IsolatedIngredients() {
		if ing.Kind != KindDir {
			continue
		}
		require.False(t, ing.Optional, "directory skeleton entries must not be optional: %s", ing.Path)
	}
}
