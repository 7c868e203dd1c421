// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/transcript"
)

// =============================================================================
// STATE
// =============================================================================

// State is the per-session send state.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return "unknown"
	}
}

// VoiceState tracks the speech-input affordance.
type VoiceState int

const (
	// VoiceUnavailable means no recognizer was found at startup.
	VoiceUnavailable VoiceState = iota
	// VoiceReady means a listening session may start.
	VoiceReady
	// VoiceListening means a listening session is in progress.
	VoiceListening
	// VoiceDisabled means recognition failed; voice stays off until restart.
	VoiceDisabled
)

// String returns the string representation of the voice state.
func (v VoiceState) String() string {
	switch v {
	case VoiceUnavailable:
		return "unavailable"
	case VoiceReady:
		return "ready"
	case VoiceListening:
		return "listening"
	case VoiceDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// =============================================================================
// SESSION
// =============================================================================

// Session coordinates typed input, speech input and replies against one transcript.
// It is safe for concurrent use.
type Session struct {
	store      *transcript.Store
	dispatcher *Dispatcher

	mu    sync.Mutex
	input string
	state State
	voice VoiceState
}

// NewSession creates a session over store. voiceAvailable is the one-time
// capability check; false disables voice input for the session's lifetime.
func NewSession(store *transcript.Store, dispatcher *Dispatcher, voiceAvailable bool) *Session {
	voice := VoiceUnavailable
	if voiceAvailable {
		voice = VoiceReady
	}
	return &Session{
		store:      store,
		dispatcher: dispatcher,
		voice:      voice,
	}
}

// Store returns the underlying transcript store.
func (s *Session) Store() *transcript.Store {
	return s.store
}

// Dispatcher returns the session's dispatcher.
func (s *Session) Dispatcher() *Dispatcher {
	return s.dispatcher
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []model.Message {
	return s.store.Messages()
}

// State returns the current send state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Input returns the pending input buffer.
func (s *Session) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// SetInput replaces the pending input buffer.
func (s *Session) SetInput(text string) {
	s.mu.Lock()
	s.input = text
	s.mu.Unlock()
}

// =============================================================================
// SEND
// =============================================================================

// Submit begins a send. It is a no-op, returning false, when the buffer is
// blank or a reply is already awaited. Otherwise it clears the buffer, appends
// the user message, enters StateAwaitingReply and returns the captured request
// context, all in one step.
func (s *Session) Submit(ctx context.Context) (Exchange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle || strings.TrimSpace(s.input) == "" {
		return Exchange{}, false
	}

	text := s.input
	s.input = ""
	s.store.Append(ctx, model.NewUserMessage(text))
	s.state = StateAwaitingReply

	return Exchange{
		Message: text,
		History: s.store.Snapshot(),
	}, true
}

// Resolve appends the reply for the outstanding exchange and returns to StateIdle.
// It is ignored when no exchange is outstanding.
func (s *Session) Resolve(ctx context.Context, reply model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateAwaitingReply {
		logging.Get().Warnw("reply without pending exchange dropped", "isError", reply.IsError)
		return
	}
	s.store.Append(ctx, reply)
	s.state = StateIdle
}

// Send submits the buffer and waits for the dispatcher. It reports whether a
// send happened.
func (s *Session) Send(ctx context.Context) bool {
	ex, ok := s.Submit(ctx)
	if !ok {
		return false
	}
	s.Resolve(ctx, s.dispatcher.Dispatch(ctx, ex))
	return true
}

// Ask sets the buffer to text and sends it, returning the appended reply.
// It reports false when the send was refused.
func (s *Session) Ask(ctx context.Context, text string) (model.Message, bool) {
	s.SetInput(text)
	if !s.Send(ctx) {
		return model.Message{}, false
	}
	msgs := s.store.Messages()
	return msgs[len(msgs)-1], true
}

// Clear resets the transcript to the greeting. It is refused, returning false,
// while a reply is awaited.
func (s *Session) Clear(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return false
	}
	s.store.Clear(ctx)
	return true
}

// =============================================================================
// VOICE
// =============================================================================

// Voice returns the speech-input state.
func (s *Session) Voice() VoiceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice
}

// VoiceAvailable reports whether a listening session may start now.
func (s *Session) VoiceAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voice == VoiceReady && s.state == StateIdle
}

// BeginListening starts an exclusive listening session.
// It returns false if voice is off, already listening, or a reply is awaited.
func (s *Session) BeginListening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voice != VoiceReady || s.state != StateIdle {
		return false
	}
	s.voice = VoiceListening
	return true
}

// EndListening finishes the listening session. A recognized fragment is added
// to the input buffer, never sent. An error disables voice for the session and
// leaves the buffer untouched.
func (s *Session) EndListening(fragment string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.voice != VoiceListening {
		return
	}
	if err != nil {
		logging.Get().Infow("speech recognition fail, voice disabled", "err", err)
		s.voice = VoiceDisabled
		return
	}
	s.voice = VoiceReady

	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return
	}
	if s.input != "" && !endsWithSpace(s.input) {
		s.input += " "
	}
	s.input += fragment
}

func endsWithSpace(s string) bool {
	r := []rune(s)
	return unicode.IsSpace(r[len(r)-1])
}
