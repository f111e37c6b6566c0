// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tokenmanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/yomu/mangadexkit/core/authenticated"
)

var testCredential = Credential{
	Username:     "reader",
	Password:     "hunter2",
	ClientID:     "personal-client-abc",
	ClientSecret: "s3cret",
}

// fakeRedis is an in-process stand-in for the three Redis commands RedisStore uses.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}

	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	default:
		f.data[key] = fmt.Sprint(v)
	}

	f.ttls[key] = expiration

	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64

	for _, key := range keys {
		if _, ok := f.data[key]; ok {
			delete(f.data, key)
			n++
		}
	}

	return redis.NewIntResult(n, nil)
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "creds", "state"), authenticated.NewSecretKeyHex())
	require.NoError(t, err)

	return map[string]Store{
		"Memory": NewMemoryStore(),
		"File":   fileStore,
		"Redis":  NewRedisStore(newFakeRedis()),
	}
}

func TestStoreLifecycle(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()

			_, err := store.GetAccessToken(ctx)
			require.ErrorIs(t, err, ErrNoAccessToken)

			_, err = store.GetRefreshToken(ctx)
			require.ErrorIs(t, err, ErrNoRefreshToken)

			_, err = store.GetStoredCredential(ctx)
			require.ErrorIs(t, err, ErrNoStoredCredential)

			require.NoError(t, store.StoreLogin(ctx, testCredential, TokenPair{AccessToken: "a1", RefreshToken: "r1"}))

			access, err := store.GetAccessToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "a1", access)

			refresh, err := store.GetRefreshToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "r1", refresh)

			credential, err := store.GetStoredCredential(ctx)
			require.NoError(t, err)
			assert.Equal(t, testCredential, credential)

			require.NoError(t, store.ReplaceAccessToken(ctx, "a2"))
			require.NoError(t, store.ReplaceRefreshToken(ctx, "r2"))

			access, err = store.GetAccessToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "a2", access)

			refresh, err = store.GetRefreshToken(ctx)
			require.NoError(t, err)
			assert.Equal(t, "r2", refresh)

			require.NoError(t, store.Remove(ctx))

			_, err = store.GetAccessToken(ctx)
			require.ErrorIs(t, err, ErrNoAccessToken)

			_, err = store.GetStoredCredential(ctx)
			require.ErrorIs(t, err, ErrNoStoredCredential)
		})
	}
}

func TestStoreLoginWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()

			require.NoError(t, store.StoreLogin(ctx, testCredential, TokenPair{AccessToken: "a1", RefreshToken: "r1"}))
			require.NoError(t, store.StoreLogin(ctx, testCredential, TokenPair{AccessToken: "a2"}))

			_, err := store.GetRefreshToken(ctx)
			require.ErrorIs(t, err, ErrNoRefreshToken)
		})
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := t.Context()
			require.NoError(t, store.StoreLogin(ctx, testCredential, TokenPair{AccessToken: "a0", RefreshToken: "r0"}))

			var wg sync.WaitGroup

			for i := range 20 {
				wg.Add(2)

				go func() {
					defer wg.Done()

					assert.NoError(t, store.ReplaceAccessToken(ctx, fmt.Sprintf("a%d", i)))
				}()

				go func() {
					defer wg.Done()

					token, err := store.GetAccessToken(ctx)
					assert.NoError(t, err)
					assert.NotEmpty(t, token)
				}()
			}

			wg.Wait()
		})
	}
}

func TestFileStorePersists(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state")
	key := authenticated.NewSecretKeyHex()

	first, err := NewFileStore(path, key)
	require.NoError(t, err)
	require.NoError(t, first.StoreLogin(t.Context(), testCredential, TokenPair{AccessToken: "a1", RefreshToken: "r1"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), testCredential.Password)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(stateFilePermissions), info.Mode().Perm())

	second, err := NewFileStore(path, key)
	require.NoError(t, err)

	credential, err := second.GetStoredCredential(t.Context())
	require.NoError(t, err)
	assert.Equal(t, testCredential, credential)

	_, err = NewFileStore(path, authenticated.NewSecretKeyHex())
	require.Error(t, err, "a different key must not open the file")

	require.NoError(t, second.Remove(t.Context()))

	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRedisStoreKeys(t *testing.T) {
	t.Parallel()

	rdb := newFakeRedis()
	store := NewRedisStore(rdb, WithRedisPrefix(":shared:"), WithRedisTTL(time.Hour))

	require.NoError(t, store.StoreLogin(t.Context(), testCredential, TokenPair{AccessToken: "a1", RefreshToken: "r1"}))

	rdb.mu.Lock()
	defer rdb.mu.Unlock()

	assert.Equal(t, "a1", rdb.data["shared:access"])
	assert.Equal(t, "r1", rdb.data["shared:refresh"])
	assert.Contains(t, rdb.data["shared:credential"], `"clientId":"personal-client-abc"`)
	assert.Equal(t, time.Hour, rdb.ttls["shared:access"])
}

func TestCredentialValid(t *testing.T) {
	t.Parallel()

	assert.True(t, testCredential.Valid())

	missing := testCredential
	missing.ClientSecret = ""
	assert.False(t, missing.Valid())
}
