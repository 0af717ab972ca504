// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package rpc

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ekam-build/ekam/internal/ekamerr"
	"github.com/ekam-build/ekam/internal/logger"
)

// Server answers one driver's rule-invocation RPC requests over a pair
// of pipes: the call pipe carries newline-terminated requests from the
// child (fd 3 on the child's side), the return pipe carries one
// newline-terminated reply per request (fd 4). Requests arrive
// strictly one at a time, since the child's own shim library
// serializes its calls with a lock before writing, so Serve's
// read-dispatch-write loop never needs its own locking.
type Server struct {
	h   Handler
	log logger.Logger
}

// NewServer returns a Server dispatching onto h.
func NewServer(h Handler, log logger.Logger) *Server {
	return &Server{h: h, log: log}
}

// Serve reads requests from calls until EOF or a read error, writing
// one reply line per request to replies. It returns when calls closes,
// which happens when the driver's process pipes are torn down at
// return. A read or write failure on these pipes is a broken-pipe RPC
// error, fatal to the owning driver, reported to the caller rather
// than the whole build, since only the one driver's action is
// affected.
func (s *Server) Serve(calls io.Reader, replies io.Writer) error {
	scanner := bufio.NewScanner(calls)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		reply, err := s.dispatch(line)
		if err != nil {
			reply = ""
			if s.log != nil {
				s.log.Warnf("rpc: %v", err)
			}
		}
		if _, err := io.WriteString(replies, reply+"\n"); err != nil {
			return ekamerr.NewRPCError(fmt.Errorf("writing rpc reply: %w", err))
		}
	}
	if err := scanner.Err(); err != nil {
		return ekamerr.NewRPCError(fmt.Errorf("reading rpc request: %w", err))
	}
	return nil
}

// dispatch runs one request against the Handler and renders its reply
// line. Not-found/empty results reply with an empty line, matching the
// shim's convention that an empty reply means ENOENT.
func (s *Server) dispatch(line string) (string, error) {
	req, err := ParseRequest(line)
	if err != nil {
		return "", err
	}
	switch req.Command {
	case CmdFindProvider:
		path, ok := s.h.FindProvider(req.Arg)
		if !ok {
			return "", nil
		}
		return path, nil
	case CmdFindInput:
		path, ok := s.h.FindInput(req.Arg)
		if !ok {
			return "", nil
		}
		return path, nil
	case CmdNewProvider:
		path, err := s.h.NewProvider(req.Arg)
		if err != nil {
			return "", err
		}
		return path, nil
	case CmdNewOutput:
		path, err := s.h.NewOutput(req.Arg)
		if err != nil {
			return "", err
		}
		return path, nil
	case CmdNoteInput:
		s.h.NoteInput(req.Arg)
		return "", nil
	default:
		return "", fmt.Errorf("unhandled rpc command: %q", req.Command)
	}
}
