// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func resetActionFlags() {
	doCreate, doEnter, doDelete, doList = false, false, false, false
}

func TestChooseActionRequiresOne(t *testing.T) {
	resetActionFlags()
	_, err := chooseAction()
	require.Error(t, err)
}

func TestChooseActionMutualExclusion(t *testing.T) {
	resetActionFlags()
	doCreate = true
	doEnter = true
	_, err := chooseAction()
	require.Error(t, err)
}

func TestChooseActionCreate(t *testing.T) {
	resetActionFlags()
	doCreate = true
	a, err := chooseAction()
	require.NoError(t, err)
	require.Equal(t, actionCreate, a)
}

func TestChooseActionListIndependentOfExclusivity(t *testing.T) {
	resetActionFlags()
	doList = true
	a, err := chooseAction()
	require.NoError(t, err)
	require.Equal(t, actionList, a)
}
