// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package rootfs builds the private root filesystem tree a sandbox child
// chroots into. Per spec.md §9's design note, population is modeled as a
// declarative ingredient list consumed by a small interpreter, rather than
// as a long series of imperative copy/bind calls.
package rootfs

// Kind identifies what an Ingredient does when applied.
type Kind int

const (
	// KindDir creates a directory (and its parents) under the root.
	KindDir Kind = iota
	// KindCopyFile copies a single host file to a destination under the
	// root, best-effort.
	KindCopyFile
	// KindCopyBinary copies a host binary plus every shared library it
	// references (via the dependency tracer) under the root, best-effort.
	KindCopyBinary
	// KindCopyDir recursively copies a host directory tree to the same
	// path under the root, following symlinks (spec.md §4.B's "Copy the
	// terminfo database" — the isolated build's counterpart to the
	// networked build's KindBindRecursive, since isolated sandboxes must
	// not keep any host filesystem visible after the copy).
	KindCopyDir
	// KindBind bind-mounts a host path onto the same path under the root.
	KindBind
	// KindBindRecursive is KindBind with MS_REC (used for /sys).
	KindBindRecursive
	// KindDeviceNode creates a character device node.
	KindDeviceNode
	// KindSymlink creates a symlink under the root.
	KindSymlink
	// KindSeedFile writes literal content to a file under the root.
	KindSeedFile
)

// Ingredient is one declarative step in populating the rootfs.
type Ingredient struct {
	Kind Kind
	// Path is the destination, relative to the sandbox root (e.g. "/etc/hosts").
	Path string
	// Source is the host-side origin for CopyFile/CopyBinary/Bind/BindRecursive,
	// or the symlink target for Symlink.
	Source string
	// Content is the literal payload for SeedFile.
	Content string
	// Mode is the permission bits for Dir/DeviceNode.
	Mode uint32
	// Major/Minor identify a character device for DeviceNode.
	Major, Minor uint32
	// Optional marks the ingredient as allowed to fail silently, per
	// spec.md §4.B's "missing source files are tolerated silently" policy.
	// Directory-skeleton, seed-file and device-node ingredients are NOT
	// optional.
	Optional bool
}

// Dir skeleton entries shared by both variants.
func dirs(paths ...string) []Ingredient {
	out := make([]Ingredient, 0, len(paths))
	for _, p := range paths {
		out = append(out, Ingredient{Kind: KindDir, Path: p, Mode: 0o755})
	}
	return out
}
