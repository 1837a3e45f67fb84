// Package path implements the guest path grammar used by the emulated file
// system: drive-letter root names and the separator rules of both POSIX and
// Symbian-style paths. UNC-style "//server" prefixes are not recognised as
// root names.
//
// Every function here is a pure string transformation — nothing touches the
// host file system.
package path

import (
	"runtime"
	"strings"
)

// IsSeparator reports whether b is a path separator in either convention.
func IsSeparator(b byte) bool {
	return b == '/' || b == '\\'
}

// CanonicalSeparator returns the separator a path should be rewritten to use.
// Symbian-mode paths (and paths on a Windows host) canonicalize to '\\'.
func CanonicalSeparator(symbianMode bool) byte {
	if symbianMode || runtime.GOOS == "windows" {
		return '\\'
	}
	return '/'
}

// IsAbsolute reports whether p has both a root name and a root directory, or
// a root directory alone (e.g. "\\foo" without a drive is still rooted on
// the current drive).
func IsAbsolute(p string) bool {
	return HasRootDir(p)
}

// HasRootName reports whether p begins with a drive letter ("C:"). A UNC
// server prefix does not count as a root name.
func HasRootName(p string) bool {
	return RootName(p) != ""
}

// RootName returns the "X:" drive prefix of p, if present. The length guard
// matters: a single-character path must not be indexed at p[1].
func RootName(p string) string {
	if len(p) >= 2 && p[1] == ':' {
		return p[0:2]
	}
	return ""
}

// HasRootDir reports whether p has a root directory component: either a
// leading separator, or a drive/UNC prefix immediately followed by one.
func HasRootDir(p string) bool {
	if p == "" {
		return false
	}
	if IsSeparator(p[0]) {
		return true
	}
	name := RootName(p)
	return name != "" && len(p) > len(name) && IsSeparator(p[len(name)])
}

// RootDir returns the single separator byte that forms p's root directory,
// or "" if p has none.
func RootDir(p string) string {
	if !HasRootDir(p) {
		return ""
	}
	name := RootName(p)
	return p[len(name) : len(name)+1]
}

// HasRootPath reports whether p has either a root name or a root directory.
func HasRootPath(p string) bool {
	return HasRootName(p) || HasRootDir(p)
}

// RootPath returns RootName(p) + RootDir(p).
func RootPath(p string) string {
	return RootName(p) + RootDir(p)
}

// RelativePath returns p with its root path stripped.
func RelativePath(p string) string {
	return strings.TrimPrefix(p, RootPath(p))
}

// AddPath joins a and b with exactly one separator between them, collapsing
// any run of separators already present at the boundary, then rewrites
// every separator in the merged string to the canonical one for
// symbianMode.
func AddPath(a, b string, symbianMode bool) string {
	sep := CanonicalSeparator(symbianMode)
	if a == "" {
		return canonicalize(b, sep)
	}
	if b == "" {
		return canonicalize(a, sep)
	}

	aEndsSep := IsSeparator(a[len(a)-1])
	bStartsSep := IsSeparator(b[0])

	var merged string
	if !aEndsSep && !bStartsSep {
		merged = a + string(sep) + b
	} else {
		merged = strings.TrimRight(a, `/\`) + string(sep) + strings.TrimLeft(b, `/\`)
	}
	return canonicalize(merged, sep)
}

// canonicalize rewrites the alternate separator to sep throughout p.
func canonicalize(p string, sep byte) string {
	other := byte('/')
	if sep == '/' {
		other = '\\'
	}
	return strings.ReplaceAll(p, string(other), string(sep))
}

// AbsolutePath resolves p against cwd, which must itself be absolute.
//
//   - p already has both a root name and a root directory: returned
//     unchanged, it is already fully qualified.
//   - p has neither a root name nor a root directory: resolved relative to
//     cwd via AddPath.
//   - p has a root directory only (e.g. "\\foo"): cwd's root name is
//     prepended.
//   - p has a root name only (e.g. "D:foo"): resolved relative to cwd's
//     directory portion but using p's drive.
func AbsolutePath(p, cwd string, symbianMode bool) string {
	switch {
	case HasRootName(p) && HasRootDir(p):
		return p
	case !HasRootName(p) && !HasRootDir(p):
		return AddPath(cwd, p, symbianMode)
	case !HasRootName(p):
		return AddPath(RootName(cwd), p, symbianMode)
	default:
		out := AddPath(RootName(p), RootDir(cwd), symbianMode)
		out = AddPath(out, RelativePath(cwd), symbianMode)
		return AddPath(out, RelativePath(p), symbianMode)
	}
}
