// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces medai keys in a shared redis database.
const DefaultRedisPrefix = "medai:"

// RedisKV stores keys as plain redis strings.
type RedisKV struct {
	rc     redis.UniversalClient
	prefix string
}

// NewRedisKV connects to redisURL and verifies the connection with a ping.
func NewRedisKV(ctx context.Context, redisURL, prefix string) (*RedisKV, error) {
	if redisURL == "" {
		return nil, errors.New("redis url cannot be empty")
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rc := redis.NewClient(opt)
	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisKVWithClient(rc, prefix), nil
}

// NewRedisKVWithClient wraps an existing client.
func NewRedisKVWithClient(rc redis.UniversalClient, prefix string) *RedisKV {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisKV{rc: rc, prefix: prefix}
}

// Get returns the value for key.
func (s *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	b, err := s.rc.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(key)
	}
	return b, err
}

// Set stores value with no expiry.
func (s *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.rc.Set(ctx, s.prefix+key, value, 0).Err()
}

// Delete removes key.
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	return s.rc.Del(ctx, s.prefix+key).Err()
}

// Close closes the client.
func (s *RedisKV) Close() error {
	return s.rc.Close()
}
