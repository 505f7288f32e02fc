// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

// Package sysfacade is the syscall façade of spec.md §4.A: thin, typed
// wrappers over mount, chroot/chdir, mknod, pipe, rlimit, sched_setaffinity
// and small text-file I/O. No buffering, no retry — callers get the raw OS
// error annotated with the operation and path, nothing more.
package sysfacade

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpError wraps a failed syscall with the operation name and the path it
// was attempted against, the way the teacher's pkg/util/fs helpers do.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Path: path, Err: err}
}

// Pipe allocates an anonymous close-on-exec pipe, returning (read, write)
// ends. The launcher's sync channel (spec.md §3/§4.C) does not use it: it
// allocates its pipe with os.Pipe.
func Pipe() (r, w *os.File, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_CLOEXEC); err != nil {
		return nil, nil, opErr("pipe2", "", err)
	}
	return os.NewFile(uintptr(fds[0]), "sync-r"), os.NewFile(uintptr(fds[1]), "sync-w"), nil
}

// Mount wraps mount(2). data is the comma-separated mount option string
// (e.g. "gid=5,mode=620,ptmxmode=666").
func Mount(source, target, fstype string, flags uintptr, data string) error {
	return opErr("mount", target, unix.Mount(source, target, fstype, flags, data))
}

// Unmount wraps umount2(2).
func Unmount(target string, flags int) error {
	return opErr("unmount", target, unix.Unmount(target, flags))
}

// Chroot wraps chroot(2).
func Chroot(path string) error {
	return opErr("chroot", path, unix.Chroot(path))
}

// Chdir wraps chdir(2).
func Chdir(path string) error {
	return opErr("chdir", path, unix.Chdir(path))
}

// MkdirAll creates a directory tree, tolerating an already-existing leaf
// (mirrors os.MkdirAll but routed through the façade for consistent error
// annotation).
func MkdirAll(path string, mode os.FileMode) error {
	return opErr("mkdir", path, os.MkdirAll(path, mode))
}

// Mknod creates a device node with the given major/minor and file mode.
func Mknod(path string, mode uint32, major, minor uint32) error {
	dev := unix.Mkdev(major, minor)
	return opErr("mknod", path, unix.Mknod(path, mode, int(dev)))
}

// Symlink wraps symlink(2), tolerating a pre-existing link at newname
// (rootfs population may run more than once against a reused tmpfs root).
func Symlink(oldname, newname string) error {
	err := unix.Symlink(oldname, newname)
	if err != nil && os.IsExist(err) {
		return nil
	}
	return opErr("symlink", newname, err)
}

// ReadFile reads a small text file (uid_map, memory.max, ...).
func ReadFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", opErr("read", path, err)
	}
	return string(b), nil
}

// WriteFile writes a small text file without appending a trailing newline
// beyond what content already carries — cgroup and procfs control files
// are picky about exact contents.
func WriteFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return opErr("open", path, err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return opErr("write", path, err)
	}
	return nil
}

// Setrlimit wraps setrlimit(2) for the current process.
func Setrlimit(resource int, rlim *unix.Rlimit) error {
	return opErr("setrlimit", "", unix.Setrlimit(resource, rlim))
}

// Getrlimit wraps getrlimit(2) for the current process.
func Getrlimit(resource int) (unix.Rlimit, error) {
	var rlim unix.Rlimit
	err := unix.Getrlimit(resource, &rlim)
	return rlim, opErr("getrlimit", "", err)
}

// SetAffinity restricts the current task to the given CPU set.
func SetAffinity(set *unix.CPUSet) error {
	return opErr("sched_setaffinity", "", unix.SchedSetaffinity(0, set))
}

// GetAffinity returns the current task's CPU set.
func GetAffinity() (unix.CPUSet, error) {
	var set unix.CPUSet
	err := unix.SchedGetaffinity(0, &set)
	return set, opErr("sched_getaffinity", "", err)
}

// Exec replaces the current process image, per spec.md §4.D step 8. It
// only returns on failure.
func Exec(path string, argv, envp []string) error {
	return opErr("exec", path, unix.Exec(path, argv, envp))
}
