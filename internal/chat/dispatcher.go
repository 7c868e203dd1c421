// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
)

// DefaultTimeout bounds one exchange with the assistant.
const DefaultTimeout = 10 * time.Second

// Assistant answers one user message given the bounded history.
// *backend.Client satisfies it.
type Assistant interface {
	Chat(ctx context.Context, message string, history []model.Message) (string, error)
}

// Exchange is the request context captured when a send begins.
type Exchange struct {
	// Message is the user's text exactly as submitted.
	Message string
	// History is the bounded transcript tail, ending with the new user message.
	History []model.Message
}

// userMessager is implemented by errors that carry text meant for the user.
type userMessager interface {
	UserMessage() string
}

// Dispatcher turns an Exchange into the assistant message to append.
// It never returns an error: every failure becomes an error-flagged message.
type Dispatcher struct {
	assistant Assistant
	timeout   time.Duration
}

// NewDispatcher creates a dispatcher. A non-positive timeout uses DefaultTimeout.
func NewDispatcher(assistant Assistant, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{assistant: assistant, timeout: timeout}
}

// Timeout returns the per-exchange timeout.
func (d *Dispatcher) Timeout() time.Duration {
	return d.timeout
}

// Dispatch sends ex to the assistant and returns the reply or error message.
func (d *Dispatcher) Dispatch(ctx context.Context, ex Exchange) (reply model.Message) {
	log := logging.Get()
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("assistant panic", "panic", r)
			reply = model.NewErrorMessage("")
		}
	}()

	if d.assistant == nil {
		return model.NewErrorMessage("")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	text, err := d.assistant.Chat(ctx, ex.Message, ex.History)
	if err != nil {
		log.Infow("chat exchange fail", "err", err, "history", len(ex.History), "elapsed", time.Since(start))
		return model.NewErrorMessage(serverText(err))
	}
	if strings.TrimSpace(text) == "" {
		log.Infow("chat exchange fail", "err", "empty reply")
		return model.NewErrorMessage("")
	}
	log.Debugw("chat exchange ok", "history", len(ex.History), "elapsed", time.Since(start))
	return model.NewBotMessage(text)
}

// serverText returns the user-facing message carried by err, if any.
func serverText(err error) string {
	var um userMessager
	if errors.As(err, &um) {
		return strings.TrimSpace(um.UserMessage())
	}
	return ""
}
