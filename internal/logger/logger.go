// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logger wraps log/slog with call-site source reporting and
// option-based construction: NewLogger(opts...) builds a Logger whose
// Info/Debug/Warn/Error (and formatted variants) report the location
// of the actual call site, not a frame inside this package.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	slogmulti "github.com/samber/slog-multi"
)

// Logger is the logging contract every engine component takes rather
// than a concrete *slog.Logger, so tests can substitute a buffer-backed
// instance.
type Logger interface {
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	Infof(format string, args ...any)
	Debugf(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

type logger struct {
	handler slog.Handler
	debug   bool
}

// Option configures NewLogger.
type Option func(*options)

type options struct {
	writer   io.Writer
	format   string
	debug    bool
	quiet    bool
	extra    []slog.Handler
	capLines int
}

// WithWriter sets the primary log sink. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.writer = w }
}

// WithFormat selects "text" (default) or "json" record encoding.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// WithDebug enables debug-level logging and source-location reporting.
// Without it, the logger runs at Info level with no source attribute,
// a quiet production default.
func WithDebug() Option {
	return func(o *options) { o.debug = true }
}

// WithQuiet suppresses the logger's own startup banner line, used by
// tests that assert on exact buffer contents.
func WithQuiet() Option {
	return func(o *options) { o.quiet = true }
}

// WithExtraHandler fans out every record to an additional slog.Handler
// (e.g. the dashboard's network listener), via samber/slog-multi.
func WithExtraHandler(h slog.Handler) Option {
	return func(o *options) { o.extra = append(o.extra, h) }
}

// WithLineCap stops forwarding records to the writer once n have been
// emitted, the implementation behind the CLI's `-l N` flag. n <= 0
// means unlimited.
func WithLineCap(n int) Option {
	return func(o *options) { o.capLines = n }
}

// NewLogger constructs a Logger from opts.
func NewLogger(opts ...Option) Logger {
	o := &options{writer: os.Stderr, format: "text"}
	for _, opt := range opts {
		opt(o)
	}

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level, AddSource: o.debug}

	var base slog.Handler
	switch o.format {
	case "json":
		base = slog.NewJSONHandler(o.writer, handlerOpts)
	default:
		base = slog.NewTextHandler(o.writer, handlerOpts)
	}
	if o.capLines > 0 {
		base = &cappedHandler{Handler: base, remaining: o.capLines}
	}

	handler := base
	if len(o.extra) > 0 {
		handlers := append([]slog.Handler{base}, o.extra...)
		handler = slogmulti.Fanout(handlers...)
	}

	l := &logger{handler: handler, debug: o.debug}
	if !o.quiet {
		l.logSkip(slog.LevelInfo, "logger initialized", "format", o.format, "debug", o.debug)
	}
	return l
}

// logSkip records a record whose program counter is the caller three
// frames up: runtime.Callers itself, this method, and the exported
// Info/Debug/.../Infof/... method (or the package-level context
// wrapper in context.go) that invoked it directly.
func (l *logger) logSkip(level slog.Level, msg string, args ...any) {
	if !l.handler.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(context.Background(), r)
}

func (l *logger) Info(msg string, args ...any)  { l.logSkip(slog.LevelInfo, msg, args...) }
func (l *logger) Debug(msg string, args ...any) { l.logSkip(slog.LevelDebug, msg, args...) }
func (l *logger) Warn(msg string, args ...any)  { l.logSkip(slog.LevelWarn, msg, args...) }
func (l *logger) Error(msg string, args ...any) { l.logSkip(slog.LevelError, msg, args...) }

func (l *logger) Infof(format string, args ...any) {
	l.logSkip(slog.LevelInfo, fmt.Sprintf(format, args...))
}
func (l *logger) Debugf(format string, args ...any) {
	l.logSkip(slog.LevelDebug, fmt.Sprintf(format, args...))
}
func (l *logger) Warnf(format string, args ...any) {
	l.logSkip(slog.LevelWarn, fmt.Sprintf(format, args...))
}
func (l *logger) Errorf(format string, args ...any) {
	l.logSkip(slog.LevelError, fmt.Sprintf(format, args...))
}

func (l *logger) With(args ...any) Logger {
	return &logger{handler: l.handler.WithAttrs(argsToAttrs(args)), debug: l.debug}
}

func (l *logger) WithGroup(name string) Logger {
	return &logger{handler: l.handler.WithGroup(name), debug: l.debug}
}

func argsToAttrs(args []any) []slog.Attr {
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(args...)
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}

// cappedHandler wraps a slog.Handler, dropping records once remaining
// reaches zero. mu guards the counter, since the engine logs through
// one Logger from several goroutines at once.
type cappedHandler struct {
	slog.Handler
	mu        sync.Mutex
	remaining int
}

func (h *cappedHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	if h.remaining <= 0 {
		h.mu.Unlock()
		return nil
	}
	h.remaining--
	h.mu.Unlock()
	return h.Handler.Handle(ctx, r)
}

func (h *cappedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &cappedHandler{Handler: h.Handler.WithAttrs(attrs), remaining: h.remaining}
}

func (h *cappedHandler) WithGroup(name string) slog.Handler {
	return &cappedHandler{Handler: h.Handler.WithGroup(name), remaining: h.remaining}
}
