// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package cmdline

import "github.com/spf13/pflag"

// EnvHandler applies an environment variable's string value to a
// registered flag.
type EnvHandler func(flag *pflag.Flag, value string) error

// EnvSetValue sets the flag's value outright, overwriting any default or
// command-line value set before environment processing runs.
func EnvSetValue(flag *pflag.Flag, value string) error {
	return flag.Value.Set(value)
}
