// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/medai-tui/internal/util"
)

// FileKV stores each key as a JSON file in BaseDir.
type FileKV struct {
	// BaseDir is the directory holding one file per key.
	// Default: ~/.medai/data/
	BaseDir string

	mu sync.RWMutex
}

// NewFileKV creates a file store rooted at baseDir, creating it if needed.
// An empty baseDir resolves to ~/.medai/data.
func NewFileKV(baseDir string) (*FileKV, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Join(home, ".medai", "data")
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, err
	}
	return &FileKV{BaseDir: baseDir}, nil
}

// Get reads the file for key.
func (s *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(key)
		}
		return nil, err
	}
	return data, nil
}

// Set replaces the file for key.
func (s *FileKV) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// RELIABILITY: Atomic write with fsync prevents a torn snapshot on crash
	return util.AtomicWriteFile(s.filePath(key), value, 0o600)
}

// Delete removes the file for key.
func (s *FileKV) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.filePath(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op for the file store.
func (s *FileKV) Close() error {
	return nil
}

func (s *FileKV) filePath(key string) string {
	return filepath.Join(s.BaseDir, key+".json")
}
