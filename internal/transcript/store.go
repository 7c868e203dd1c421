// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript owns the ordered chat transcript and its persisted snapshot.
//
// The in-memory transcript grows for the life of the session. Only the last
// MaxStoredMessages entries are persisted, as a JSON array under StorageKey,
// and every mutation rewrites that snapshot. Persistence is best effort:
// failures are logged and never reach the caller.
package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/medai-tui/internal/logging"
	"github.com/jeranaias/medai-tui/internal/model"
	"github.com/jeranaias/medai-tui/internal/storage"
)

const (
	// StorageKey is the key the snapshot is stored under.
	StorageKey = "medai_chat_history"

	// MaxStoredMessages bounds both the persisted snapshot and the request context.
	MaxStoredMessages = 15

	// writeTimeout bounds a single snapshot write.
	writeTimeout = 3 * time.Second
)

// ErrCorrupt wraps every failure to decode a persisted snapshot.
var ErrCorrupt = errors.New("corrupt transcript snapshot")

func logger() *zap.SugaredLogger {
	return logging.Get()
}

// Store is the ordered message list plus its persistence.
// It is safe for concurrent use.
type Store struct {
	kv storage.KV

	mu       sync.RWMutex
	messages []model.Message
	version  uint64
}

// New returns a store seeded with the greeting. Call Load to restore a saved snapshot.
// A nil kv yields a memory-only store.
func New(kv storage.KV) *Store {
	return &Store{
		kv:       kv,
		messages: []model.Message{model.Greeting()},
	}
}

// =============================================================================
// LOAD
// =============================================================================

// Load restores the transcript from the persisted snapshot.
// Absent, unreadable, malformed, empty, or invalid data leaves the greeting in place.
// It reports whether a saved snapshot was restored.
func (s *Store) Load(ctx context.Context) bool {
	msgs, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			logger().Debugw("no saved transcript", "key", StorageKey)
		} else {
			logger().Infow("load transcript fail", "key", StorageKey, "err", err)
		}
		s.reset()
		return false
	}

	s.mu.Lock()
	s.messages = msgs
	s.version++
	s.mu.Unlock()
	logger().Debugw("transcript loaded", "count", len(msgs))
	return true
}

func (s *Store) read(ctx context.Context) ([]model.Message, error) {
	if s.kv == nil {
		return nil, storage.ErrNotFound
	}
	data, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode parses a persisted snapshot. It fails with ErrCorrupt on malformed
// JSON, an empty array, or any message that breaks the at-rest rules. Oversized snapshots are
// trimmed to the newest MaxStoredMessages.
func Decode(data []byte) ([]model.Message, error) {
	var msgs []model.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrCorrupt)
	}
	for i, m := range msgs {
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, &IndexError{Index: i, Err: err})
		}
	}
	return model.Tail(msgs, MaxStoredMessages), nil
}

// IndexError reports which snapshot entry failed validation.
type IndexError struct {
	Index int
	Err   error
}

func (e *IndexError) Error() string {
	return "message " + strconv.Itoa(e.Index) + ": " + e.Err.Error()
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// =============================================================================
// MUTATIONS
// =============================================================================

// Append adds m to the end of the transcript and persists the snapshot.
func (s *Store) Append(ctx context.Context, m model.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, m)
	s.version++
	snap := model.Tail(s.messages, MaxStoredMessages)
	s.mu.Unlock()

	s.write(ctx, snap)
}

// ReplaceAll swaps the whole transcript and persists the snapshot.
// An empty msgs reseeds the greeting.
func (s *Store) ReplaceAll(ctx context.Context, msgs []model.Message) {
	s.mu.Lock()
	if len(msgs) == 0 {
		s.messages = []model.Message{model.Greeting()}
	} else {
		s.messages = append([]model.Message(nil), msgs...)
	}
	s.version++
	snap := model.Tail(s.messages, MaxStoredMessages)
	s.mu.Unlock()

	s.write(ctx, snap)
}

// Clear removes the persisted snapshot and reseeds the greeting in memory.
// The greeting is not written, so the key stays absent until the next mutation.
func (s *Store) Clear(ctx context.Context) {
	s.reset()
	if s.kv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		logger().Infow("clear transcript fail", "key", StorageKey, "err", err)
		return
	}
	logger().Infow("transcript cleared")
}

func (s *Store) reset() {
	s.mu.Lock()
	s.messages = []model.Message{model.Greeting()}
	s.version++
	s.mu.Unlock()
}

func (s *Store) write(ctx context.Context, snap []model.Message) {
	if s.kv == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		logger().Infow("encode transcript fail", "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		logger().Infow("save transcript fail", "key", StorageKey, "err", err)
		return
	}
	logger().Debugw("transcript saved", "count", len(snap))
}

// =============================================================================
// READS
// =============================================================================

// Messages returns a copy of the full ordered transcript.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Snapshot returns the last MaxStoredMessages messages.
func (s *Store) Snapshot() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Tail(s.messages, MaxStoredMessages)
}

// Len returns the transcript length.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Version increases on every change; views compare it to decide when to re-render.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Saved reads the persisted snapshot without touching the in-memory transcript.
func (s *Store) Saved(ctx context.Context) ([]model.Message, error) {
	return s.read(ctx)
}
