// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package sandbox defines the plain value types shared by the launcher,
// rootfs builder, resource limiter and registry. Config is copyable data,
// not a polymorphic object, per spec.md §9's "Handler set" note — it
// crosses the clone boundary as command-line arguments of the re-executed
// child, not a pointer into shared memory.
package sandbox

import "fmt"

// Config is the sandbox descriptor of spec.md §3, minus Name and CreatedAt
// which the registry owns separately.
type Config struct {
	MemoryMB int
	CPUCores int
	Network  bool
}

// Descriptor is a full registry record: a Config plus its identity and
// creation time.
type Descriptor struct {
	Name      string
	Config    Config
	CreatedAt int64
}

// Validate enforces the field-level constraints of spec.md §3: memory_mb
// positive, cpu_cores non-negative. The name is not part of Config and is
// not checked here.
func (c Config) Validate() error {
	if c.MemoryMB <= 0 {
		return fmt.Errorf("memory_mb must be positive, got %d", c.MemoryMB)
	}
	if c.CPUCores < 0 {
		return fmt.Errorf("cpu_cores must be non-negative, got %d", c.CPUCores)
	}
	return nil
}

// MemoryBytes returns the memory cap in bytes, the unit cgroup-v2 and
// RLIMIT_AS both ultimately want.
func (c Config) MemoryBytes() uint64 {
	return uint64(c.MemoryMB) << 20
}
