// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tokenmanager

import (
	"context"
	"sync"
)

// MemoryStore keeps the credential and tokens in process memory only.
type MemoryStore struct {
	mu    sync.RWMutex
	state state
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetAccessToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.accessToken()
}

func (m *MemoryStore) GetRefreshToken(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.refreshToken()
}

func (m *MemoryStore) GetStoredCredential(context.Context) (Credential, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.state.credential()
}

func (m *MemoryStore) ReplaceAccessToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.AccessToken = token

	return nil
}

func (m *MemoryStore) ReplaceRefreshToken(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.RefreshToken = token

	return nil
}

func (m *MemoryStore) StoreLogin(_ context.Context, credential Credential, tokens TokenPair) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state{
		Credential:   &credential,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}

	return nil
}

func (m *MemoryStore) Remove(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = state{}

	return nil
}
