// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rootfs

import "runtime"

// libArch returns the multiarch directory component used under /lib and
// /usr/lib on Debian/Ubuntu-derived hosts (spec.md §9's "Open question"
// acknowledges this embeds a distro assumption).
func libArch() string {
	switch runtime.GOARCH {
	case "arm64":
		return "aarch64-linux-gnu"
	case "arm":
		return "arm-linux-gnueabihf"
	default:
		return "x86_64-linux-gnu"
	}
}

// curatedLibraryNames is the copy-based build's library allowlist (spec.md
// §4.B): C runtime, math, threads, dl, rt, resolv, nss, terminal handling,
// selinux/pcre/capability support, and the compiler runtime shim.
var curatedLibraryNames = []string{
	"libc.so.6", "libm.so.6", "libpthread.so.0", "libdl.so.2", "librt.so.1",
	"libresolv.so.2", "libnss_files.so.2", "libnss_dns.so.2",
	"libncurses.so.6", "libtinfo.so.6", "libselinux.so.1", "libpcre.so.3",
	"libcap.so.2", "libattr.so.1", "libacl.so.1", "libgcc_s.so.1",
}

// essentialUtilities is the shell + coreutils allowlist (spec.md §4.B).
var essentialUtilities = []string{
	"ls", "cat", "echo", "pwd", "mkdir", "rm", "cp", "mv", "touch", "chmod",
	"chown", "ln", "date", "grep", "sed", "head", "tail", "wc", "sort",
	"find", "env", "id", "which", "ps", "kill", "nano", "vi", "vim",
	"less", "more", "clear", "reset", "tput", "stty", "bash", "sh",
}

var binDirs = []string{"/bin", "/usr/bin", "/usr/sbin", "/sbin"}

// dynamicLoaderCandidates are each copied when present on the host; a
// missing candidate is skipped.
var dynamicLoaderCandidates = []string{
	"/lib64/ld-linux-x86-64.so.2",
	"/lib/ld-linux-aarch64.so.1",
	"/lib/ld-linux.so.2",
}

// IsolatedIngredients builds the declarative ingredient list for
// network=false sandboxes (the tmpfs root itself is mounted by
// Builder.MountRoot, not by an ingredient): directory skeleton, copied dynamic
// loader, curated libraries, essential utilities (each copy-traced for its
// own library dependencies), the terminfo database, and seeded
// /etc/{passwd,group,profile}.
func IsolatedIngredients() []Ingredient {
	var list []Ingredient

	list = append(list, dirs(
		"/bin", "/sbin", "/usr/bin", "/usr/sbin",
		"/lib", "/lib64", "/lib/"+libArch(), "/usr/lib", "/usr/lib/"+libArch(),
		"/etc", "/tmp", "/var/tmp", "/proc", "/sys", "/dev",
	)...)

	for _, loader := range dynamicLoaderCandidates {
		list = append(list, Ingredient{Kind: KindCopyFile, Path: loader, Source: loader, Optional: true})
	}

	for _, name := range curatedLibraryNames {
		for _, dir := range []string{"/lib/" + libArch(), "/usr/lib/" + libArch(), "/lib", "/usr/lib"} {
			src := dir + "/" + name
			list = append(list, Ingredient{Kind: KindCopyFile, Path: src, Source: src, Optional: true})
		}
	}

	for _, util := range essentialUtilities {
		for _, dir := range binDirs {
			src := dir + "/" + util
			list = append(list, Ingredient{Kind: KindCopyBinary, Path: src, Source: src, Optional: true})
		}
	}

	// spec.md §4.B requires the isolated build to *copy* the terminfo
	// database rather than bind it in (that's the networked build's
	// technique) — a live bind would keep a host filesystem reference
	// visible from inside an otherwise fully isolated sandbox.
	list = append(list, Ingredient{Kind: KindCopyDir, Path: "/usr/share/terminfo", Source: "/usr/share/terminfo", Optional: true})

	list = append(list,
		Ingredient{Kind: KindSeedFile, Path: "/etc/passwd", Content: "root:x:0:0:root:/:/bin/sh\n"},
		Ingredient{Kind: KindSeedFile, Path: "/etc/group", Content: "root:x:0:\n"},
		Ingredient{Kind: KindSeedFile, Path: "/etc/profile", Content: "" +
			"export TERM=xterm\n" +
			"export TERMINFO=/usr/share/terminfo\n" +
			"export PATH=/bin:/usr/bin:/sbin:/usr/sbin\n" +
			"export VIMRUNTIME=/usr/share/vim\n",
		},
	)

	return list
}
