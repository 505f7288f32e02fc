// Copyright (c) 2026, The nsbox Authors. All rights reserved.
// This software is licensed under a 3-clause BSD license. Please consult the
// LICENSE.md file distributed with the sources of this project regarding your
// rights to use or distribute this software.

package rootfs

// networkedBindDirs and networkedBindFiles are the host paths exposed
// verbatim by spec.md §4.B's networked build: whole directories bind-
// mounted, plus a curated set of individual files so the chroot can still
// resolve packages, users, and certificates against the host's own state.
var networkedBindDirs = []string{
	"/bin", "/usr/bin", "/usr/sbin", "/lib", "/lib64", "/usr/lib",
	"/usr/libexec", "/sbin",
}

var networkedBindFiles = []string{
	"/etc/resolv.conf", "/etc/ld.so.cache", "/etc/ld.so.conf",
	"/etc/ld.so.conf.d", "/etc/sudoers", "/etc/pam.d", "/etc/security",
	"/etc/nsswitch.conf", "/etc/login.defs", "/etc/passwd", "/etc/group",
	"/etc/shadow", "/etc/hostname", "/etc/hosts", "/etc/ssl",
	"/etc/ca-certificates", "/usr/share/ca-certificates", "/etc/apt",
	"/var/lib/apt", "/var/cache/apt", "/var/lib/dpkg", "/var/log/apt",
	"/usr/share/debconf", "/usr/share/dpkg", "/usr/share/perl",
	"/usr/share/perl5", "/etc/alternatives", "/usr/share/locale",
	"/usr/share/vim", "/etc/vim", "/usr/share/terminfo", "/lib/terminfo",
	"/run",
}

// NetworkedIngredients builds the declarative ingredient list for
// network=true sandboxes: the same skeleton, populated by bind-mounting
// host directories/files instead of copying, plus a recursive bind of
// /sys, device nodes, and /etc/environment seeding. The list mounts no
// devpts on /dev/pts and creates no /dev/ptmx.
func NetworkedIngredients() []Ingredient {
	var list []Ingredient

	list = append(list, dirs(
		"/bin", "/usr/bin", "/usr/sbin", "/sbin",
		"/lib", "/lib64", "/usr/lib", "/usr/libexec",
		"/etc", "/tmp", "/var/tmp", "/proc", "/sys", "/dev", "/run",
	)...)

	for _, dir := range networkedBindDirs {
		list = append(list, Ingredient{Kind: KindBind, Path: dir, Source: dir, Optional: true})
	}
	for _, f := range networkedBindFiles {
		list = append(list, Ingredient{Kind: KindBind, Path: f, Source: f, Optional: true})
	}
	list = append(list, Ingredient{Kind: KindBindRecursive, Path: "/sys", Source: "/sys", Optional: true})

	list = append(list,
		Ingredient{Kind: KindDeviceNode, Path: "/dev/null", Mode: 0o666, Major: 1, Minor: 3},
		Ingredient{Kind: KindDeviceNode, Path: "/dev/zero", Mode: 0o666, Major: 1, Minor: 5},
		Ingredient{Kind: KindDeviceNode, Path: "/dev/random", Mode: 0o666, Major: 1, Minor: 8},
		Ingredient{Kind: KindDeviceNode, Path: "/dev/urandom", Mode: 0o666, Major: 1, Minor: 9},
		Ingredient{Kind: KindDeviceNode, Path: "/dev/tty", Mode: 0o666, Major: 5, Minor: 0},
		Ingredient{Kind: KindDeviceNode, Path: "/dev/full", Mode: 0o666, Major: 1, Minor: 7},
	)

	list = append(list, Ingredient{Kind: KindSeedFile, Path: "/etc/environment", Content: "" +
		"DEBIAN_FRONTEND=noninteractive\n" +
		"PATH=/bin:/usr/bin:/sbin:/usr/sbin\n",
	})

	return list
}
