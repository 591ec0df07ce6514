// Copyright 2024 The OpenIRR Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log provides a thin wrapper around zap with support for free-form
// key-value context and logger embedding in contexts.
package log

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openirr/irrd/pkg/private/serrors"
)

// Logger describes the logger interface.
type Logger interface {
	// New returns a child logger with the given key-value context attached
	// to every entry.
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// Level is the log level type.
type Level = zapcore.Level

// Available log levels.
const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	ErrorLevel = zapcore.ErrorLevel
)

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(lvl)
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		fields = append(fields, zap.Any(fmt.Sprint(ctx[i]), ctx[i+1]))
	}
	return fields
}

var root = &logger{logger: zap.NewNop()}

// Root returns the root logger. It never returns nil.
func Root() Logger {
	return root
}

// New returns a child of the root logger with attached context.
func New(ctx ...any) Logger {
	return Root().New(ctx...)
}

// Discard sets the root logger to discard all entries. Useful in tests.
func Discard() {
	root = &logger{logger: zap.NewNop()}
}

// Debug logs at debug level on the root logger.
func Debug(msg string, ctx ...any) {
	root.Debug(msg, ctx...)
}

// Info logs at info level on the root logger.
func Info(msg string, ctx ...any) {
	root.Info(msg, ctx...)
}

// Error logs at error level on the root logger.
func Error(msg string, ctx ...any) {
	root.Error(msg, ctx...)
}

// Config configures the logging output of the process.
type Config struct {
	// Level of console logging (debug|info|error).
	Level string `toml:"level,omitempty"`
	// Format of the console log entries (human|json).
	Format string `toml:"format,omitempty"`
}

// InitDefaults populates unset fields with defaults.
func (c *Config) InitDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "human"
	}
}

// Validate checks that the config contains valid values.
func (c *Config) Validate() error {
	if _, err := parseLevel(c.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Format) {
	case "", "human", "json":
		return nil
	default:
		return serrors.New("unknown log format", "format", c.Format)
	}
}

// Setup configures the root logger according to cfg. It must be called at
// most once, before the first use of the root logger.
func Setup(cfg Config) error {
	cfg.InitDefaults()
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return err
	}
	encoding := "json"
	encCfg := zap.NewProductionEncoderConfig()
	if strings.ToLower(cfg.Format) == "human" {
		encoding = "console"
		encCfg = zap.NewDevelopmentEncoderConfig()
	}
	zCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(lvl),
		Encoding:          encoding,
		EncoderConfig:     encCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	l, err := zCfg.Build()
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	root = &logger{logger: l}
	return nil
}

// Flush writes any buffered log entries.
func Flush() {
	_ = root.logger.Sync()
}

// HandlePanic logs a panic with a stack trace and re-raises it. Deferred at
// the top of every goroutine that logs.
func HandlePanic() {
	if msg := recover(); msg != nil {
		root.logger.Error("panic", zap.Any("msg", msg), zap.Stack("stack"))
		Flush()
		panic(msg)
	}
}

func parseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, serrors.New("unknown log level", "level", s)
	}
}
