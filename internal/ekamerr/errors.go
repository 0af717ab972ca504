// Package ekamerr defines the engine's typed errors: OS errors, RPC
// (broken pipe) errors, protocol errors, and graph consistency errors.
// Each is a distinct type so callers at the build-loop boundary can
// tell them apart. A user/rule failure has no type here: it is the
// message a driver records through Failed.
package ekamerr

import "fmt"

// OSError wraps a syscall failure observed by the artifact layer or the
// RPC server, carrying the path, syscall name, and errno for
// diagnosability.
type OSError struct {
	Path    string
	Syscall string
	Err     error
}

func (e *OSError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Syscall, e.Path, e.Err)
}

func (e *OSError) Unwrap() error { return e.Err }

// NewOSError constructs an OSError, returning nil if err is nil so call
// sites can write `return NewOSError(...)` unconditionally.
func NewOSError(path, syscall string, err error) error {
	if err == nil {
		return nil
	}
	return &OSError{Path: path, Syscall: syscall, Err: err}
}

// ProtocolError reports a malformed RPC line from a rule-invocation
// child: an overlong path, an unparsable command, or an unrecognized
// tag type in a synthetic /ekam-provider/ path.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error: %s: %q", e.Reason, e.Line)
}

// NewProtocolError constructs a ProtocolError.
func NewProtocolError(line, reason string) error {
	return &ProtocolError{Line: line, Reason: reason}
}

// RPCError reports a failure of the pipes a rule-invocation child's
// interposition shim talks over: a broken call or return pipe. This is
// fatal to the owning driver's action, not the whole build.
type RPCError struct {
	Err error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error: %v", e.Err)
}

func (e *RPCError) Unwrap() error { return e.Err }

// NewRPCError constructs an RPCError, returning nil if err is nil.
func NewRPCError(err error) error {
	if err == nil {
		return nil
	}
	return &RPCError{Err: err}
}

// ConsistencyError reports a violation of a graph invariant detected at
// runtime, such as an action reporting Passed() while it still holds
// provisions that reference a nonexistent artifact, or a driver
// attempting a transition the state machine forbids.
type ConsistencyError struct {
	Reason string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("graph consistency error: %s", e.Reason)
}

// NewConsistencyError constructs a ConsistencyError from a formatted
// reason.
func NewConsistencyError(format string, args ...any) error {
	return &ConsistencyError{Reason: fmt.Sprintf(format, args...)}
}
