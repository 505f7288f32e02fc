// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rootfs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"golang.org/x/sys/unix"

	"github.com/nsbox/sandbox/internal/pkg/boxlog"
	"github.com/nsbox/sandbox/internal/pkg/rootfs/deps"
	"github.com/nsbox/sandbox/internal/pkg/sysfacade"
)

// Builder interprets an ingredient list against a sandbox root.
type Builder struct {
	Root    string
	DryRun  bool
	tracer  deps.Tracer
	skipped int
}

// New returns a Builder rooted at root. A zero-value tracer falls back to
// deps.Default().
func New(root string, tracer deps.Tracer) *Builder {
	if tracer == nil {
		tracer = deps.Default()
	}
	return &Builder{Root: root, tracer: tracer}
}

// MountRoot mounts a tmpfs at Root. Failure here is fatal per spec.md
// §4.B's failure semantics — unlike every other ingredient, there is no
// best-effort fallback for the root itself.
func (b *Builder) MountRoot() error {
	if err := sysfacade.MkdirAll(b.Root, 0o755); err != nil {
		return fmt.Errorf("creating sandbox root %s: %w", b.Root, err)
	}
	if b.DryRun {
		boxlog.Infof("dry-run: would mount tmpfs on %s", b.Root)
		return nil
	}
	if err := sysfacade.Mount("tmpfs", b.Root, "tmpfs", 0, ""); err != nil {
		return fmt.Errorf("mounting tmpfs root: %w", err)
	}
	return nil
}

// Apply runs every ingredient in order. Individual failures on Optional
// ingredients are logged and skipped; the caller still proceeds
// (spec.md §4.B: "the launcher still proceeds").
func (b *Builder) Apply(list []Ingredient) error {
	for _, ing := range list {
		if err := b.apply(ing); err != nil {
			if !ing.Optional {
				return err
			}
			b.skipped++
			boxlog.Debugf("skipping %s: %v", ing.Path, err)
		}
	}
	if b.skipped > 0 {
		boxlog.Warningf("rootfs population skipped %d best-effort ingredient(s)", b.skipped)
	}
	return nil
}

func (b *Builder) dest(path string) (string, error) {
	return securejoin.SecureJoin(b.Root, path)
}

func (b *Builder) apply(ing Ingredient) error {
	dst, err := b.dest(ing.Path)
	if err != nil {
		return fmt.Errorf("resolving %s under root: %w", ing.Path, err)
	}

	if b.DryRun {
		boxlog.Infof("dry-run: %s %s", kindName(ing.Kind), ing.Path)
		return nil
	}

	switch ing.Kind {
	case KindDir:
		return sysfacade.MkdirAll(dst, os.FileMode(ing.Mode))

	case KindCopyFile:
		return copyFile(ing.Source, dst)

	case KindCopyBinary:
		return b.copyBinaryWithDeps(ing.Source, dst)

	case KindCopyDir:
		return copyDir(ing.Source, dst)

	case KindBind:
		if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		if err := ensureBindTarget(ing.Source, dst); err != nil {
			return err
		}
		return sysfacade.Mount(ing.Source, dst, "", unix.MS_BIND, "")

	case KindBindRecursive:
		if err := sysfacade.MkdirAll(dst, 0o755); err != nil {
			return err
		}
		return sysfacade.Mount(ing.Source, dst, "", unix.MS_BIND|unix.MS_REC, "")

	case KindDeviceNode:
		if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return sysfacade.Mknod(dst, unix.S_IFCHR|ing.Mode, ing.Major, ing.Minor)

	case KindSymlink:
		if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return sysfacade.Symlink(ing.Source, dst)

	case KindSeedFile:
		if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return os.WriteFile(dst, []byte(ing.Content), 0o644)

	default:
		return fmt.Errorf("unknown ingredient kind %d", ing.Kind)
	}
}

// copyBinaryWithDeps copies a binary and every shared library the
// dependency tracer reports for it, mirroring each at the same absolute
// path under the root (spec.md §4.B).
func (b *Builder) copyBinaryWithDeps(src, dst string) error {
	if err := copyFile(src, dst); err != nil {
		return err
	}
	libs, err := b.tracer.Trace(src)
	if err != nil {
		boxlog.Debugf("dependency trace failed for %s: %v", src, err)
		return nil
	}
	for _, lib := range libs {
		libDst, err := b.dest(lib)
		if err != nil {
			continue
		}
		if err := copyFile(lib, libDst); err != nil {
			boxlog.Debugf("skipping library %s for %s: %v", lib, src, err)
		}
	}
	return nil
}

func copyFile(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		return sysfacade.Symlink(target, dst)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return nil
}

// copyDir recursively copies src to dst, dereferencing symlinks as it goes
// (the original C implementation's `cp -rL`) so the isolated sandbox never
// retains a live reference back into the host filesystem.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		info, err := os.Stat(path)
		if err != nil {
			// A dangling symlink inside the tree: skip it rather than
			// fail the whole copy.
			return nil
		}
		if info.IsDir() {
			return sysfacade.MkdirAll(target, 0o755)
		}
		return copyDerefFile(path, target, info)
	})
}

// copyDerefFile copies the resolved contents of src (following symlinks) to
// dst, unlike copyFile which preserves symlinks as symlinks.
func copyDerefFile(src, dst string, info os.FileInfo) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := sysfacade.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// ensureBindTarget creates an empty file at dst when source is a regular
// file (bind-mounting a file onto a directory, or vice versa, fails).
func ensureBindTarget(source, dst string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return sysfacade.MkdirAll(dst, 0o755)
	}
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func kindName(k Kind) string {
	switch k {
	case KindDir:
		return "mkdir"
	case KindCopyFile:
		return "copy"
	case KindCopyBinary:
		return "copy+trace"
	case KindCopyDir:
		return "copytree"
	case KindBind:
		return "bind"
	case KindBindRecursive:
		return "rbind"
	case KindDeviceNode:
		return "mknod"
	case KindSymlink:
		return "symlink"
	case KindSeedFile:
		return "seed"
	default:
		return "?"
	}
}
