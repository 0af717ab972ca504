// Copyright (C) 2026 The Ekam Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"context"
	"fmt"
	"log/slog"
)

type contextKey struct{}

// WithLogger attaches l to ctx, retrievable via FromContext.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// FromContext returns the Logger attached to ctx, or a bare stderr
// logger if none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(contextKey{}).(Logger); ok {
		return l
	}
	return NewLogger(WithQuiet())
}

func loggerImplFrom(ctx context.Context) *logger {
	l := FromContext(ctx)
	if impl, ok := l.(*logger); ok {
		return impl
	}
	return &logger{handler: slog.Default().Handler()}
}

// Info logs at info level using the Logger attached to ctx, reporting
// the caller's own source location rather than this wrapper's.
func Info(ctx context.Context, msg string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelInfo, msg, args...)
}

// Debug mirrors Info at debug level.
func Debug(ctx context.Context, msg string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelDebug, msg, args...)
}

// Warn mirrors Info at warn level.
func Warn(ctx context.Context, msg string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelWarn, msg, args...)
}

// Error mirrors Info at error level.
func Error(ctx context.Context, msg string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelError, msg, args...)
}

// Infof is Info with fmt.Sprintf-style formatting.
func Infof(ctx context.Context, format string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelInfo, fmt.Sprintf(format, args...))
}

// Debugf is Debug with fmt.Sprintf-style formatting.
func Debugf(ctx context.Context, format string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelDebug, fmt.Sprintf(format, args...))
}

// Warnf is Warn with fmt.Sprintf-style formatting.
func Warnf(ctx context.Context, format string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf is Error with fmt.Sprintf-style formatting.
func Errorf(ctx context.Context, format string, args ...any) {
	loggerImplFrom(ctx).logSkip(slog.LevelError, fmt.Sprintf(format, args...))
}
