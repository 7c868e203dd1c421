// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech provides optional speech-to-text input for the chat.
//
// A Recognizer runs one listening session per Recognize call and returns at
// most one transcript fragment. Capability is decided once by Detect; callers
// treat an unavailable recognizer as "voice input off for this session".
package speech

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by recognizers that cannot run.
var ErrUnavailable = errors.New("speech recognition unavailable")

// DefaultTimeout bounds one listening session.
const DefaultTimeout = 15 * time.Second

// Recognizer turns one utterance into text.
type Recognizer interface {
	// Available reports whether Recognize can run at all.
	Available() bool
	// Recognize listens once and returns the recognized text, possibly empty.
	Recognize(ctx context.Context) (string, error)
}

// Options configures Detect.
type Options struct {
	// Command is a program that listens once and prints the transcript to stdout.
	Command string
	// WSURL is a streaming recognition service. Takes precedence over Command.
	WSURL string
	// CaptureCommand records audio to stdout for the streaming service.
	CaptureCommand string
	// Language is a BCP-47 tag passed to the recognizer.
	Language string
	// Timeout bounds one listening session.
	Timeout time.Duration
}

// Detect picks the recognizer described by opts. The result is never nil.
func Detect(opts Options) Recognizer {
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	switch {
	case opts.WSURL != "":
		return NewWebSocketRecognizer(opts)
	case opts.Command != "":
		return NewCommandRecognizer(opts)
	default:
		return None{}
	}
}

// None is the recognizer used when no speech backend is configured.
type None struct{}

// Available always reports false.
func (None) Available() bool { return false }

// Recognize always fails with ErrUnavailable.
func (None) Recognize(context.Context) (string, error) { return "", ErrUnavailable }
