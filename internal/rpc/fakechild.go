// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package rpc

import (
	"bufio"
	"fmt"
	"io"
)

// FakeChild drives the wire protocol from the child's side of an
// in-process pipe pair, standing in for the real interposition shim in
// tests that want to exercise Server end-to-end without a subprocess.
type FakeChild struct {
	w io.Writer
	r *bufio.Reader
}

// NewFakeChild wraps the call-pipe writer and return-pipe reader a real
// child process would otherwise have inherited on fd 3 and fd 4.
func NewFakeChild(calls io.Writer, replies io.Reader) *FakeChild {
	return &FakeChild{w: calls, r: bufio.NewReader(replies)}
}

// Call sends one request line and returns the reply line, with its
// trailing newline stripped. An empty reply means not-found, matching
// Server's convention.
func (c *FakeChild) Call(req Request) (string, error) {
	if _, err := fmt.Fprintln(c.w, FormatRequest(req)); err != nil {
		return "", err
	}
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return line[:len(line)-1], nil
}

func (c *FakeChild) FindProvider(tagName string) (string, error) {
	return c.Call(Request{Command: CmdFindProvider, Arg: tagName})
}

func (c *FakeChild) FindInput(path string) (string, error) {
	return c.Call(Request{Command: CmdFindInput, Arg: path})
}

func (c *FakeChild) NewProvider(tagName string) (string, error) {
	return c.Call(Request{Command: CmdNewProvider, Arg: tagName})
}

func (c *FakeChild) NewOutput(path string) (string, error) {
	return c.Call(Request{Command: CmdNewOutput, Arg: path})
}

func (c *FakeChild) NoteInput(path string) error {
	_, err := c.Call(Request{Command: CmdNoteInput, Arg: path})
	return err
}
