// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package logging provides structured logging for the migration pipeline.
//
// It wraps the standard library's log/slog with a small Config surface so
// every stage (lowering, normalization, abstract interpretation, planning,
// emission) logs through one consistent shape: stderr by default, JSON when
// Config.JSON is set, leveled, and safe for concurrent use.
package logging

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum level that will be emitted.
	Level Level

	// Service names the component emitting logs (e.g. "lowering", "planner").
	// Attached to every record as the "service" attribute.
	Service string

	// Writer overrides the destination. Defaults to os.Stderr.
	Writer io.Writer

	// JSON selects structured JSON output instead of text. Defaults to text
	// (false); no terminal detection is done.
	JSON bool
}

// Logger wraps slog.Logger with a fixed service attribute.
//
// Thread Safety: Logger is safe for concurrent use; the underlying
// slog.Logger is thread-safe, and SetLevel changes Logger's own level
// under mu.
type Logger struct {
	mu     sync.Mutex
	inner  *slog.Logger
	level  Level
	levVar *slog.LevelVar
}

// New creates a Logger from Config.
func New(cfg Config) *Logger {
	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	levVar := &slog.LevelVar{}
	levVar.Set(cfg.Level.slogLevel())

	opts := &slog.HandlerOptions{Level: levVar}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	inner := slog.New(handler)
	if cfg.Service != "" {
		inner = inner.With("service", cfg.Service)
	}

	return &Logger{inner: inner, level: cfg.Level, levVar: levVar}
}

// Default returns a Logger at LevelInfo writing text to stderr, unscoped
// to any particular service. Suitable for quick CLI usage.
func Default() *Logger {
	return New(Config{Level: LevelInfo})
}

// With returns a derived Logger that always includes the given key/value
// pairs, matching slog.Logger.With semantics.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{inner: l.inner.With(args...), level: l.level, levVar: l.levVar}
}

// SetLevel adjusts the minimum emitted level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.levVar.Set(level.slogLevel())
}

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
