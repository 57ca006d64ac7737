// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging facade used across evmsim. It is backed by the
// slog based logger of go-ethereum, so a single handler installed with
// SetDefault formats the output of both evmsim and go-ethereum packages.
package log

import (
	"context"
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, in addition to the slog ones.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12
)

// Legacy verbosity values, as accepted by the --verbosity flag.
const (
	LegacyLevelCrit = iota
	LegacyLevelError
	LegacyLevelWarn
	LegacyLevelInfo
	LegacyLevelDebug
	LegacyLevelTrace
)

// Logger writes key/value pairs to a handler.
type Logger interface {
	With(ctx ...any) Logger
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
}

// FromLegacyLevel converts a 0-5 verbosity into a slog level.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case LegacyLevelCrit:
		return LevelCrit
	case LegacyLevelError:
		return LevelError
	case LegacyLevelWarn:
		return LevelWarn
	case LegacyLevelInfo:
		return LevelInfo
	case LegacyLevelDebug:
		return LevelDebug
	}
	if lvl > LegacyLevelTrace {
		return LevelTrace - slog.Level(lvl-LegacyLevelTrace)
	}
	return LevelTrace
}

// NewTerminalHandler returns a human friendly handler writing records at or above lvl.
func NewTerminalHandler(wr io.Writer, lvl slog.Level, useColor bool) slog.Handler {
	return ethlog.NewTerminalHandlerWithLevel(wr, lvl, useColor)
}

// SetDefault installs h as the root handler.
func SetDefault(h slog.Handler) {
	ethlog.SetDefault(ethlog.NewLogger(h))
}

// Root returns the root logger.
func Root() Logger {
	return &logger{}
}

// WithContext returns a logger carrying ctx. The root handler is resolved on
// every call, so package level loggers follow later SetDefault calls.
func WithContext(ctx ...any) Logger {
	return &logger{ctx: ctx}
}

// New is an alias of WithContext.
func New(ctx ...any) Logger {
	return WithContext(ctx...)
}

type logger struct {
	ctx []any
}

func (l *logger) inner() ethlog.Logger {
	if len(l.ctx) == 0 {
		return ethlog.Root()
	}
	return ethlog.Root().With(l.ctx...)
}

func (l *logger) With(ctx ...any) Logger {
	merged := make([]any, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	return &logger{ctx: append(merged, ctx...)}
}

func (l *logger) Trace(msg string, ctx ...any) { l.inner().Trace(msg, ctx...) }
func (l *logger) Debug(msg string, ctx ...any) { l.inner().Debug(msg, ctx...) }
func (l *logger) Info(msg string, ctx ...any)  { l.inner().Info(msg, ctx...) }
func (l *logger) Warn(msg string, ctx ...any)  { l.inner().Warn(msg, ctx...) }
func (l *logger) Error(msg string, ctx ...any) { l.inner().Error(msg, ctx...) }
func (l *logger) Crit(msg string, ctx ...any)  { l.inner().Crit(msg, ctx...) }

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner().Enabled(ctx, level)
}

// Trace logs at trace level on the root logger.
func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) { Root().Info(msg, ctx...) }

// Warn logs at warn level on the root logger.
func Warn(msg string, ctx ...any) { Root().Warn(msg, ctx...) }

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
