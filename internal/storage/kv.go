// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// =============================================================================
// KEY-VALUE INTERFACE
// =============================================================================

// KV is a durable string-keyed byte store.
// Implementations must be safe for concurrent use.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases any underlying resources.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Options selects and configures a backend.
type Options struct {
	Backend    string
	Dir        string // file backend directory
	SQLitePath string // sqlite database file
	RedisURL   string // redis://host:port/db
	KeyPrefix  string // redis key namespace
}

// Open returns the KV backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		return NewFileKV(opts.Dir)
	case BackendSQLite:
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join(opts.Dir, "medai.db")
		}
		return NewSQLiteKV(ctx, path)
	case BackendRedis:
		return NewRedisKV(ctx, opts.RedisURL, opts.KeyPrefix)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}

// =============================================================================
// KEY VALIDATION
// =============================================================================

var keyPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,128}$`)

// validateKey rejects keys that could escape a directory or collide with temp files.
func validateKey(key string) error {
	if !keyPattern.MatchString(key) || strings.HasPrefix(key, ".") {
		return &StorageError{Message: "invalid key", Key: key}
	}
	return nil
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a key doesn't exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StorageError{Message: "key not found"}

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Key     string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Key != "" {
		return e.Message + ": " + e.Key
	}
	return e.Message
}

// Is implements errors.Is support; keys are ignored in the comparison.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

func notFound(key string) error {
	return &StorageError{Message: ErrNotFound.Message, Key: key}
}
