// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package tokenmanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"codeberg.org/yomu/mangadexkit/core/authenticated"
)

const (
	stateFilePermissions = 0o600
	stateDirPermissions  = 0o700
)

// FileStore keeps the credential and tokens in a single file sealed with a
// PASETO v4.local key. Reads are served from memory.
type FileStore struct {
	path   string
	sealer *authenticated.Sealer

	mu    sync.RWMutex
	state state
}

// NewFileStore opens the store at path, decrypting it with the hex-encoded key.
// A missing file yields an empty store; it is created on the first write.
func NewFileStore(path, keyHex string) (*FileStore, error) {
	sealer, err := authenticated.NewSealerFromHex(keyHex)
	if err != nil {
		return nil, err
	}

	f := &FileStore{path: path, sealer: sealer}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		log.Debug().
			Str("path", path).
			Msg("No credential file found, starting empty")

		return f, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read credential file %s: %w", path, err)
	}

	if err := sealer.Open(strings.TrimSpace(string(data)), &f.state); err != nil {
		return nil, fmt.Errorf("credential file %s: %w", path, err)
	}

	return f, nil
}

func (f *FileStore) GetAccessToken(context.Context) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.state.accessToken()
}

func (f *FileStore) GetRefreshToken(context.Context) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.state.refreshToken()
}

func (f *FileStore) GetStoredCredential(context.Context) (Credential, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.state.credential()
}

func (f *FileStore) ReplaceAccessToken(_ context.Context, token string) error {
	return f.update(func(s *state) { s.AccessToken = token })
}

func (f *FileStore) ReplaceRefreshToken(_ context.Context, token string) error {
	return f.update(func(s *state) { s.RefreshToken = token })
}

func (f *FileStore) StoreLogin(_ context.Context, credential Credential, tokens TokenPair) error {
	return f.update(func(s *state) {
		*s = state{
			Credential:   &credential,
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
		}
	})
}

func (f *FileStore) Remove(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = state{}

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credential file: %w", err)
	}

	return nil
}

// update applies change to a copy of the state, persists it, then publishes it.
// The in-memory state is left untouched if persisting fails.
func (f *FileStore) update(change func(*state)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.state
	if next.Credential != nil {
		credential := *next.Credential
		next.Credential = &credential
	}

	change(&next)

	if err := f.persist(next); err != nil {
		return err
	}

	f.state = next

	return nil
}

func (f *FileStore) persist(s state) error {
	sealed, err := f.sealer.Seal(s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, stateDirPermissions); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary credential file: %w", err)
	}

	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.WriteString(sealed); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to write credential file: %w", err)
	}

	if err := tmp.Chmod(stateFilePermissions); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("failed to set credential file permissions: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credential file: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace credential file: %w", err)
	}

	return nil
}
