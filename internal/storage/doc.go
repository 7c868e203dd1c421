// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable key-value persistence for medai.
//
// The chat transcript snapshot is the main tenant; it is written on every
// transcript mutation, so all backends favor small, whole-value writes.
//
// # Key Types
//
//   - KV: Get/Set/Delete interface shared by every backend
//   - FileKV: one JSON file per key, written atomically (default)
//   - SQLiteKV: single-table SQLite database (pure Go driver)
//   - RedisKV: plain redis strings under a key prefix
//
// # Usage
//
//	kv, err := storage.Open(ctx, storage.Options{Backend: "file", Dir: dataDir})
//	err = kv.Set(ctx, "medai_chat_history", data)
//	data, err := kv.Get(ctx, "medai_chat_history")
//	if errors.Is(err, storage.ErrNotFound) { ... }
//
// # Storage Location
//
// The file backend writes to ~/.medai/data/ unless configured otherwise.
package storage
