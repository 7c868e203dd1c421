// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging holds the process-wide sugared zap logger.
//
// The TUI owns stdout and stderr, so the logger writes to a file
// (default ~/.medai/medai.log). Until Init runs, a no-op logger is installed
// and packages may log freely from tests.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var current atomic.Pointer[zap.SugaredLogger]

func init() {
	current.Store(zap.NewNop().Sugar())
}

// Get returns the installed logger.
func Get() *zap.SugaredLogger {
	return current.Load()
}

// Set installs l as the process-wide logger. A nil l installs a no-op logger.
func Set(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	current.Store(l)
}

// Options configures Init.
type Options struct {
	Level string // debug, info, warn, error
	File  string // log file path; "-" writes to stderr
	Dev   bool   // human-readable console encoding
}

// DefaultFile returns ~/.medai/medai.log.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "medai.log")
	}
	return filepath.Join(home, ".medai", "medai.log")
}

// Init builds a logger from opts, installs it, and returns it.
// Call Sync on the result before exit.
func Init(opts Options) (*zap.SugaredLogger, error) {
	var zc zap.Config
	if opts.Dev {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || opts.Level == "" {
		level = zapcore.InfoLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	file := opts.File
	if file == "" {
		file = DefaultFile()
	}
	if file == "-" {
		zc.OutputPaths = []string{"stderr"}
	} else {
		if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
			return nil, err
		}
		zc.OutputPaths = []string{file}
	}
	zc.ErrorOutputPaths = zc.OutputPaths

	zl, err := zc.Build()
	if err != nil {
		return nil, err
	}
	sugar := zl.Sugar()
	Set(sugar)
	return sugar, nil
}
