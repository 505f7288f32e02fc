// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package registry implements the append-only sandbox descriptor log of
// spec.md §3/§4.G. It is deliberately dumb: no locking, no deduplication on
// write, first-match-wins on read. Collaborators (the out-of-scope GUI)
// read or rewrite the same file directly; the core only ever appends.
package registry

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nsbox/sandbox/internal/pkg/sandbox"
)

// Registry is a handle to the fixed-path descriptor file.
type Registry struct {
	path string
}

// Open returns a handle to the registry file at path. The file need not
// exist yet; it is created on first Append.
func Open(path string) *Registry {
	return &Registry{path: path}
}

// Append adds a new tail line for name with the given config, stamped with
// the current wall-clock time. It does not check for existing entries with
// the same name — spec.md §3(iii): "the core itself does not deduplicate
// on write".
func (r *Registry) Append(name string, cfg sandbox.Config) (sandbox.Descriptor, error) {
	d := sandbox.Descriptor{
		Name:      name,
		Config:    cfg,
		CreatedAt: time.Now().Unix(),
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return sandbox.Descriptor{}, fmt.Errorf("opening registry %s: %w", r.path, err)
	}
	defer f.Close()

	line := formatLine(d)
	if _, err := f.WriteString(line + "\n"); err != nil {
		return sandbox.Descriptor{}, fmt.Errorf("appending to registry %s: %w", r.path, err)
	}
	return d, nil
}

// Lookup scans the registry top-to-bottom and returns the first descriptor
// whose name matches; later duplicates are ignored (spec.md §8 invariant
// 2). A missing registry file is treated as "no such sandbox", not an
// error, so a first-ever enter on a clean host fails the same way a typo'd
// name would.
func (r *Registry) Lookup(name string) (sandbox.Descriptor, bool, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return sandbox.Descriptor{}, false, nil
		}
		return sandbox.Descriptor{}, false, fmt.Errorf("reading registry %s: %w", r.path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		d, ok := parseLine(scanner.Text())
		if ok && d.Name == name {
			return d, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return sandbox.Descriptor{}, false, fmt.Errorf("scanning registry %s: %w", r.path, err)
	}
	return sandbox.Descriptor{}, false, nil
}

// All returns every well-formed descriptor in file order, used by the
// supplemental `sandbox -l` listing (SPEC_FULL.md §4.H). Malformed lines
// are skipped rather than failing the whole read — the registry has no
// schema enforcement on write.
func (r *Registry) All() ([]sandbox.Descriptor, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading registry %s: %w", r.path, err)
	}
	defer f.Close()

	var out []sandbox.Descriptor
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if d, ok := parseLine(scanner.Text()); ok {
			out = append(out, d)
		}
	}
	return out, scanner.Err()
}

func formatLine(d sandbox.Descriptor) string {
	network := 0
	if d.Config.Network {
		network = 1
	}
	return fmt.Sprintf("%s %d %d %d %d", d.Name, d.Config.MemoryMB, d.Config.CPUCores, network, d.CreatedAt)
}

func parseLine(line string) (sandbox.Descriptor, bool) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return sandbox.Descriptor{}, false
	}
	mem, err := strconv.Atoi(fields[1])
	if err != nil {
		return sandbox.Descriptor{}, false
	}
	cores, err := strconv.Atoi(fields[2])
	if err != nil {
		return sandbox.Descriptor{}, false
	}
	net, err := strconv.Atoi(fields[3])
	if err != nil {
		return sandbox.Descriptor{}, false
	}
	createdAt, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return sandbox.Descriptor{}, false
	}
	return sandbox.Descriptor{
		Name: fields[0],
		Config: sandbox.Config{
			MemoryMB: mem,
			CPUCores: cores,
			Network:  net != 0,
		},
		CreatedAt: createdAt,
	}, true
}
