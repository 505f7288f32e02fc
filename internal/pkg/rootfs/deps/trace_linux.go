// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package deps abstracts "given a binary path, yield its referenced
// shared-library paths" — spec.md §9's capability boundary around
// dependency tracing (the original source does `ldd | grep | cp`).
package deps

import (
	"bufio"
	"debug/elf"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tracer yields the shared libraries a binary references.
type Tracer interface {
	Trace(binary string) ([]string, error)
}

// Default returns the preferred tracer for the host: lddTracer if ldd is on
// PATH, otherwise an ELF-parsing fallback.
func Default() Tracer {
	if _, err := exec.LookPath("ldd"); err == nil {
		return lddTracer{}
	}
	return elfTracer{}
}

// lddTracer shells out to ldd(1), the same tool the original
// implementation scripted directly.
type lddTracer struct{}

func (lddTracer) Trace(binary string) ([]string, error) {
	out, err := exec.Command("ldd", binary).Output()
	if err != nil {
		return nil, fmt.Errorf("ldd %s: %w", binary, err)
	}

	var libs []string
	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Typical lines:
		//   libc.so.6 => /lib/x86_64-linux-gnu/libc.so.6 (0x...)
		//   /lib64/ld-linux-x86-64.so.2 (0x...)
		if idx := strings.Index(line, "=>"); idx >= 0 {
			rest := strings.TrimSpace(line[idx+2:])
			if fields := strings.Fields(rest); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
				libs = append(libs, fields[0])
			}
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
			libs = append(libs, fields[0])
		}
	}
	return libs, scanner.Err()
}

// elfTracer parses the ELF .dynamic section directly when ldd is
// unavailable (e.g. a minimal host image). It only resolves library
// *names* (DT_NEEDED), not full paths, so it searches the conventional
// library directories for each.
type elfTracer struct{}

var searchDirs = []string{
	"/lib", "/lib64", "/usr/lib", "/usr/lib64",
	"/lib/x86_64-linux-gnu", "/usr/lib/x86_64-linux-gnu",
}

func (elfTracer) Trace(binary string) ([]string, error) {
	f, err := elf.Open(binary)
	if err != nil {
		return nil, fmt.Errorf("opening %s as ELF: %w", binary, err)
	}
	defer f.Close()

	needed, err := f.DynString(elf.DT_NEEDED)
	if err != nil {
		return nil, fmt.Errorf("reading DT_NEEDED for %s: %w", binary, err)
	}

	var libs []string
	for _, name := range needed {
		if path, ok := resolveInSearchDirs(name); ok {
			libs = append(libs, path)
		}
	}
	return libs, nil
}

func resolveInSearchDirs(name string) (string, bool) {
	for _, dir := range searchDirs {
		path := dir + "/" + name
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}
