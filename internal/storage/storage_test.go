// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SHARED BEHAVIOR
// =============================================================================

type kvFactory func(t *testing.T) KV

func backends() map[string]kvFactory {
	return map[string]kvFactory{
		"file": func(t *testing.T) KV {
			kv, err := NewFileKV(t.TempDir())
			require.NoError(t, err)
			return kv
		},
		"sqlite": func(t *testing.T) KV {
			kv, err := NewSQLiteKV(context.Background(), filepath.Join(t.TempDir(), "test.db"))
			require.NoError(t, err)
			return kv
		},
		"redis": func(t *testing.T) KV {
			mr := miniredis.RunT(t)
			return NewRedisKVWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "")
		},
	}
}

func TestKV_SetGetDelete(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := open(t)
			defer kv.Close()

			_, err := kv.Get(ctx, "medai_chat_history")
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get on empty store: got %v, want ErrNotFound", err)
			}

			require.NoError(t, kv.Set(ctx, "medai_chat_history", []byte(`[1]`)))
			require.NoError(t, kv.Set(ctx, "medai_chat_history", []byte(`[1,2]`)))

			got, err := kv.Get(ctx, "medai_chat_history")
			require.NoError(t, err)
			assert.Equal(t, `[1,2]`, string(got))

			require.NoError(t, kv.Delete(ctx, "medai_chat_history"))
			_, err = kv.Get(ctx, "medai_chat_history")
			assert.ErrorIs(t, err, ErrNotFound)

			// Deleting again is fine
			assert.NoError(t, kv.Delete(ctx, "medai_chat_history"))
		})
	}
}

func TestKV_RejectsBadKeys(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			kv := open(t)
			defer kv.Close()

			for _, key := range []string{"", "../escape", ".hidden", "a/b", "with space"} {
				if err := kv.Set(context.Background(), key, []byte("x")); err == nil {
					t.Errorf("Set(%q) should fail", key)
				}
			}
		})
	}
}

func TestKV_ConcurrentWrites(t *testing.T) {
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			kv := open(t)
			defer kv.Close()

			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_ = kv.Set(ctx, "k", []byte(`"v"`))
				}()
			}
			wg.Wait()

			got, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, `"v"`, string(got))
		})
	}
}

// =============================================================================
// BACKEND SPECIFICS
// =============================================================================

func TestFileKV_WritesPrivateFile(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)

	require.NoError(t, kv.Set(context.Background(), "snapshot", []byte("{}")))

	info, err := os.Stat(filepath.Join(dir, "snapshot.json"))
	require.NoError(t, err)
	if perm := info.Mode().Perm(); perm&0o077 != 0 && os.PathSeparator == '/' {
		t.Errorf("file mode = %v, want no group/other access", perm)
	}
}

func TestSQLiteKV_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "medai.db")

	kv, err := NewSQLiteKV(ctx, path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	require.NoError(t, kv.Close())

	kv, err = NewSQLiteKV(ctx, path)
	require.NoError(t, err)
	defer kv.Close()

	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestRedisKV_UsesPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	kv, err := NewRedisKV(context.Background(), "redis://"+mr.Addr()+"/0", "test:")
	require.NoError(t, err)
	defer kv.Close()

	require.NoError(t, kv.Set(context.Background(), "k", []byte("v")))

	got, err := mr.Get("test:k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewRedisKV_BadURL(t *testing.T) {
	_, err := NewRedisKV(context.Background(), "not a url", "")
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	kv, err := Open(ctx, Options{Backend: "", Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)

	kv, err = Open(ctx, Options{Backend: "SQLite", Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteKV{}, kv)
	kv.Close()

	_, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}

func TestStorageError_Is(t *testing.T) {
	err := notFound("abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "abc")
	assert.False(t, errors.Is(&StorageError{Message: "invalid key"}, ErrNotFound))
}
