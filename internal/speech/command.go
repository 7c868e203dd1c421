// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRecognizer runs an external program that listens once and prints
// the transcript to stdout. MEDAI_SPEECH_LANG is set to the configured language.
type CommandRecognizer struct {
	argv []string
	opts Options
}

// NewCommandRecognizer parses opts.Command into argv.
func NewCommandRecognizer(opts Options) *CommandRecognizer {
	return &CommandRecognizer{argv: strings.Fields(opts.Command), opts: opts}
}

// Available reports whether the program is on PATH.
func (r *CommandRecognizer) Available() bool {
	if len(r.argv) == 0 {
		return false
	}
	_, err := exec.LookPath(r.argv[0])
	return err == nil
}

// Recognize runs the program and returns its trimmed stdout.
func (r *CommandRecognizer) Recognize(ctx context.Context) (string, error) {
	if !r.Available() {
		return "", ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	cmd.Env = append(os.Environ(), "MEDAI_SPEECH_LANG="+r.opts.Language)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("speech command timed out: %w", ctx.Err())
		}
		return "", fmt.Errorf("speech command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}
