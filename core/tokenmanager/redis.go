// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tokenmanager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "mangadexkit"

// RedisClient is the subset of *redis.Client used by RedisStore.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore shares one login between processes through Redis.
type RedisStore struct {
	rdb    RedisClient
	prefix string
	ttl    time.Duration
}

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithRedisPrefix sets the key prefix. Surrounding colons are trimmed.
func WithRedisPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

// WithRedisTTL expires every key after d. Zero keeps keys until removed.
func WithRedisTTL(d time.Duration) RedisOption {
	return func(s *RedisStore) { s.ttl = d }
}

// NewRedisClient connects to a Redis server.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewRedisStore returns a store backed by rdb.
func NewRedisStore(rdb RedisClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: defaultRedisPrefix}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *RedisStore) key(name string) string {
	return s.prefix + ":" + name
}

func (s *RedisStore) get(ctx context.Context, name string, missing error) (string, error) {
	value, err := s.rdb.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && value == "") {
		return "", missing
	}

	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", s.key(name), err)
	}

	return value, nil
}

func (s *RedisStore) set(ctx context.Context, name string, value any) error {
	if err := s.rdb.Set(ctx, s.key(name), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(name), err)
	}

	return nil
}

func (s *RedisStore) GetAccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, "access", ErrNoAccessToken)
}

func (s *RedisStore) GetRefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, "refresh", ErrNoRefreshToken)
}

func (s *RedisStore) GetStoredCredential(ctx context.Context) (Credential, error) {
	raw, err := s.get(ctx, "credential", ErrNoStoredCredential)
	if err != nil {
		return Credential{}, err
	}

	var credential Credential
	if err := json.Unmarshal([]byte(raw), &credential); err != nil {
		return Credential{}, fmt.Errorf("stored credential is corrupt: %w", err)
	}

	return credential, nil
}

func (s *RedisStore) ReplaceAccessToken(ctx context.Context, token string) error {
	return s.set(ctx, "access", token)
}

func (s *RedisStore) ReplaceRefreshToken(ctx context.Context, token string) error {
	return s.set(ctx, "refresh", token)
}

func (s *RedisStore) StoreLogin(ctx context.Context, credential Credential, tokens TokenPair) error {
	encoded, err := json.Marshal(credential)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	if err := s.set(ctx, "credential", encoded); err != nil {
		return err
	}

	if err := s.set(ctx, "access", tokens.AccessToken); err != nil {
		return err
	}

	if tokens.RefreshToken == "" {
		return s.del(ctx, "refresh")
	}

	return s.set(ctx, "refresh", tokens.RefreshToken)
}

func (s *RedisStore) Remove(ctx context.Context) error {
	return s.del(ctx, "credential", "access", "refresh")
}

func (s *RedisStore) del(ctx context.Context, names ...string) error {
	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = s.key(name)
	}

	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
