// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package rpc

import (
	"strings"
)

// Usage distinguishes a read-like syscall from a write-like one, which
// the decision table below treats differently under the synthetic
// /ekam-provider/ namespace.
type Usage int

const (
	// Read covers open-for-read, stat, and similar lookups.
	Read Usage = iota
	// Write covers open-for-write, create, and similar mutations.
	Write
)

// Decision is the outcome of remapping one path a traced child touched.
type Decision struct {
	// Passthrough means the shim should hand the original path
	// straight to the real syscall, unmodified.
	Passthrough bool
	// Request, when non-nil, is the RPC call the shim should make
	// instead of the real syscall, substituting Request's reply for
	// the path.
	Request *Request
	// NoteOnly means the shim should issue a findInput-less noteInput
	// call for bookkeeping and then perform the real syscall on path
	// unmodified.
	NoteOnly bool
}

const providerPrefix = "/ekam-provider/"

// Remap implements the path-interception decision table for one path,
// absolute or relative, a child process's shim intercepted. bypassDirs
// is the parsed EKAM_REMAP_BYPASS_DIRS list: absolute directories,
// each ending in "/", that are passed through unchanged.
func Remap(path string, usage Usage, bypassDirs []string) Decision {
	if isBypassed(path, bypassDirs) {
		return Decision{Passthrough: true}
	}

	switch {
	case path == "/tmp", strings.HasPrefix(path, "/tmp/"),
		path == "/var/tmp", strings.HasPrefix(path, "/var/tmp/"),
		path == "/proc", strings.HasPrefix(path, "/proc/"):
		return Decision{Passthrough: true}
	}

	if strings.HasPrefix(path, providerPrefix) {
		return remapProvider(path[len(providerPrefix):], usage)
	}

	if !strings.HasPrefix(path, "/") {
		// Relative paths resolve against the driver's own scratch
		// subtree; the caller (findInput/newOutput) already knows
		// which.
		if usage == Write {
			return Decision{Request: &Request{Command: CmdNewOutput, Arg: path}}
		}
		return Decision{Request: &Request{Command: CmdFindInput, Arg: path}}
	}

	if usage == Write {
		// An absolute path outside every recognized tree is rejected;
		// the shim turns this into EACCES for the child.
		return Decision{}
	}
	return Decision{NoteOnly: true}
}

// remapProvider handles a path under the synthetic
// /ekam-provider/<type>/<rest> namespace: rest is just "<type>", with no
// "/", for a bare /ekam-provider/<type> path, and otherwise has its first
// "/" turned into ":" to recover the tag name a findProvider/newProvider
// call expects.
func remapProvider(rest string, usage Usage) Decision {
	typ, remainder, found := strings.Cut(rest, "/")
	if !found {
		// Bare /ekam-provider/<type>: no RPC call and no passthrough.
		// This is the zero Decision, the same one Remap returns for a
		// rejected absolute write; Decision has no field that marks an
		// empty directory handle.
		return Decision{Passthrough: false}
	}
	tagName := typ + ":" + remainder
	if usage == Write {
		return Decision{Request: &Request{Command: CmdNewProvider, Arg: tagName}}
	}
	return Decision{Request: &Request{Command: CmdFindProvider, Arg: tagName}}
}

func isBypassed(path string, bypassDirs []string) bool {
	for _, dir := range bypassDirs {
		if strings.HasPrefix(path, dir) {
			return true
		}
	}
	return false
}
