// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat messages and backend records.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderBot:
		return "MedAI"
	default:
		return string(s)
	}
}

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// GreetingText is the canned assistant message a fresh transcript starts with.
const GreetingText = "Hi, I'm your health assistant. How can I help you today?"

// FallbackErrorText is shown when a failed exchange carries no server message.
const FallbackErrorText = "Sorry, I couldn't process your request. Please try again."

// Message is a single chat transcript entry.
// The JSON shape is shared by the persisted snapshot and the chat request history.
type Message struct {
	Text      string     `json:"text"`
	Sender    Sender     `json:"sender"`
	IsError   bool       `json:"isError,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// NewUserMessage creates a message typed (or dictated) by the user.
func NewUserMessage(text string) Message {
	return Message{Text: text, Sender: SenderUser}
}

// NewBotMessage creates an assistant reply stamped with the current time.
func NewBotMessage(text string) Message {
	now := time.Now()
	return Message{Text: text, Sender: SenderBot, Timestamp: &now}
}

// NewErrorMessage creates an assistant message for a failed exchange.
// An empty text falls back to FallbackErrorText.
func NewErrorMessage(text string) Message {
	if strings.TrimSpace(text) == "" {
		text = FallbackErrorText
	}
	return Message{Text: text, Sender: SenderBot, IsError: true}
}

// Greeting returns the seeded welcome message.
func Greeting() Message {
	return Message{Text: GreetingText, Sender: SenderBot}
}

// IsUser reports whether the message came from the user.
func (m Message) IsUser() bool {
	return m.Sender == SenderUser
}

// ErrInvalidMessage is returned by Validate for messages that cannot be stored.
var ErrInvalidMessage = errors.New("invalid message")

// Validate checks the at-rest invariants: a known sender, non-empty text,
// and error/timestamp flags only on assistant messages.
func (m Message) Validate() error {
	if !m.Sender.Valid() {
		return fmt.Errorf("%w: unknown sender %q", ErrInvalidMessage, m.Sender)
	}
	if m.Text == "" {
		return fmt.Errorf("%w: empty text", ErrInvalidMessage)
	}
	if m.IsUser() && (m.IsError || m.Timestamp != nil) {
		return fmt.Errorf("%w: user message carries assistant fields", ErrInvalidMessage)
	}
	return nil
}

// Tail returns the last n messages of msgs as a new slice.
// A non-positive n yields an empty slice.
func Tail(msgs []Message, n int) []Message {
	if n <= 0 {
		return []Message{}
	}
	start := len(msgs) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(msgs)-start)
	copy(out, msgs[start:])
	return out
}
