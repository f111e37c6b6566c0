// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package tokenmanager stores the account credential and the OAuth token pair used
for authenticated requests.

Every [Store] is safe for concurrent use: reads may run in parallel and writes are
serialized. Callers are expected to fetch the access token immediately before each
request instead of holding on to it, since another request may refresh it at any time.
*/
package tokenmanager

import (
	"context"
	"errors"
)

var (
	// ErrNoAccessToken is returned when no access token has been stored.
	ErrNoAccessToken = errors.New("no access token stored")

	// ErrNoRefreshToken is returned when no refresh token has been stored.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrNoStoredCredential is returned when no account credential has been stored.
	ErrNoStoredCredential = errors.New("no credential stored")
)

// Credential identifies a personal API client and the account it acts for.
type Credential struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
}

// Valid reports whether every field needed for a password grant is present.
func (c Credential) Valid() bool {
	return c.Username != "" && c.Password != "" && c.ClientID != "" && c.ClientSecret != ""
}

// TokenPair is the result of a successful login.
// RefreshToken may be empty when the server did not issue one.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Store persists one credential and one token pair.
type Store interface {
	GetAccessToken(ctx context.Context) (string, error)
	GetRefreshToken(ctx context.Context) (string, error)
	GetStoredCredential(ctx context.Context) (Credential, error)

	// ReplaceAccessToken swaps the access token after a reauthentication.
	ReplaceAccessToken(ctx context.Context, token string) error

	// ReplaceRefreshToken swaps the refresh token when the server rotates it.
	ReplaceRefreshToken(ctx context.Context, token string) error

	// StoreLogin saves the credential together with the tokens it produced.
	StoreLogin(ctx context.Context, credential Credential, tokens TokenPair) error

	// Remove deletes the credential and both tokens.
	Remove(ctx context.Context) error
}

// state is the full contents of a store, shared by the implementations that
// keep everything in one record.
type state struct {
	Credential   *Credential `json:"credential,omitempty"`
	AccessToken  string      `json:"accessToken,omitempty"`
	RefreshToken string      `json:"refreshToken,omitempty"`
}

func (s *state) accessToken() (string, error) {
	if s.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	return s.AccessToken, nil
}

func (s *state) refreshToken() (string, error) {
	if s.RefreshToken == "" {
		return "", ErrNoRefreshToken
	}

	return s.RefreshToken, nil
}

func (s *state) credential() (Credential, error) {
	if s.Credential == nil {
		return Credential{}, ErrNoStoredCredential
	}

	return *s.Credential, nil
}
