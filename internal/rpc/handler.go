// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package rpc

import (
	"fmt"
	"strings"

	"github.com/ekam-build/ekam/internal/action"
	"github.com/ekam-build/ekam/internal/tag"
)

// Handler is the one-driver-at-a-time surface the RPC protocol
// dispatches onto. ContextHandler is the production implementation,
// backed by a running Action's action.Context; tests substitute a fake.
type Handler interface {
	FindProvider(tagName string) (path string, ok bool)
	FindInput(relPath string) (path string, ok bool)
	NewProvider(tagName string) (path string, err error)
	NewOutput(relPath string) (path string, err error)
	NoteInput(absPath string)
}

// ContextHandler adapts a running action.Context to Handler, so the
// RPC wire protocol is nothing more than the same operations an
// in-process Action already calls directly through ctx.
type ContextHandler struct {
	Ctx action.Context
}

func (h ContextHandler) FindProvider(tagName string) (string, bool) {
	art, ok := h.Ctx.FindProvider(tag.FromName(tagName))
	if !ok {
		return "", false
	}
	return art.AbsPath(), true
}

func (h ContextHandler) FindInput(relPath string) (string, bool) {
	art, ok := h.Ctx.FindInput(relPath)
	if !ok {
		return "", false
	}
	return art.AbsPath(), true
}

// NewProvider allocates a fresh scratch artifact under a name derived
// from tagName and provides it under that tag, mirroring the
// ekam-provider synthetic write path a shim's write syscall resolves to.
func (h ContextHandler) NewProvider(tagName string) (string, error) {
	if tagName == "" {
		return "", fmt.Errorf("newProvider: empty tag")
	}
	art := h.Ctx.NewOutput(scratchNameForTag(tagName))
	h.Ctx.Provide(art, tag.FromName(tagName))
	return art.AbsPath(), nil
}

func (h ContextHandler) NewOutput(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("newOutput: empty path")
	}
	art := h.Ctx.NewOutput(relPath)
	return art.AbsPath(), nil
}

func (h ContextHandler) NoteInput(absPath string) {
	h.Ctx.Log("read outside project: " + absPath)
}

// scratchNameForTag turns an arbitrary tag name into a filesystem-safe
// relative path under the driver's scratch subtree, replacing the path
// separators a tag like "header:sub/dir/foo.h" may carry.
func scratchNameForTag(tagName string) string {
	safe := strings.NewReplacer(":", "_", "/", "_").Replace(tagName)
	return "rpc-provider/" + safe
}
