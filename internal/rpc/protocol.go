// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package rpc implements the engine side of the rule-invocation RPC: a
// line-oriented request/reply protocol a child process's interposition
// shim speaks over two inherited pipes. The shim itself, the
// LD_PRELOAD layer that actually intercepts libc calls, is a separate,
// platform-specific artifact outside this repository's scope; this
// package implements the listener an in-process or external shim
// calls into, plus the path-remapping decision table and an in-process
// fake child used to exercise the protocol end-to-end in tests.
package rpc

import (
	"fmt"
	"strings"

	"github.com/ekam-build/ekam/internal/ekamerr"
)

// Command names, one per line of the request grammar.
const (
	CmdFindProvider = "findProvider"
	CmdFindInput    = "findInput"
	CmdNewProvider  = "newProvider"
	CmdNewOutput    = "newOutput"
	CmdNoteInput    = "noteInput"
)

// Request is one parsed line from the call pipe.
type Request struct {
	Command string
	Arg     string
}

// ParseRequest splits a raw call-pipe line (without its trailing
// newline) into a command and its single argument.
func ParseRequest(line string) (Request, error) {
	cmd, arg, found := strings.Cut(line, " ")
	if !found {
		return Request{}, ekamerr.NewProtocolError(line, "missing argument")
	}
	switch cmd {
	case CmdFindProvider, CmdFindInput, CmdNewProvider, CmdNewOutput, CmdNoteInput:
		return Request{Command: cmd, Arg: arg}, nil
	default:
		return Request{}, ekamerr.NewProtocolError(line, fmt.Sprintf("unknown command %q", cmd))
	}
}

// FormatRequest renders req back into a call-pipe line, used by the
// fake child in tests.
func FormatRequest(req Request) string {
	return req.Command + " " + req.Arg
}
