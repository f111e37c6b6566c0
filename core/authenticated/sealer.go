// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package authenticated seals small values with PASETO v4.local so they can be kept
on disk without exposing secrets.
*/
package authenticated

import (
	"errors"
	"fmt"

	"aidanwoods.dev/go-paseto"
)

// Implicit is bound into every sealed token. Changing it invalidates everything sealed before.
const Implicit = "mangadexkit credential store"

const payloadClaim = "payload"

var errNoKey = errors.New("sealer has no key loaded")

// NewSecretKeyHex returns a fresh v4.local key, hex encoded.
func NewSecretKeyHex() string {
	return paseto.NewV4SymmetricKey().ExportHex()
}

// Sealer encrypts and decrypts values with a v4.local key.
type Sealer struct {
	key    paseto.V4SymmetricKey
	loaded bool
}

// NewSealerFromHex returns a Sealer for a hex-encoded key.
func NewSealerFromHex(hex string) (*Sealer, error) {
	s := &Sealer{}

	if err := s.LoadSecretKeyFromHex(hex); err != nil {
		return nil, err
	}

	return s, nil
}

// LoadSecretKeyFromHex replaces the key.
func (s *Sealer) LoadSecretKeyFromHex(hex string) error {
	key, err := paseto.V4SymmetricKeyFromHex(hex)
	if err != nil {
		return fmt.Errorf("invalid v4.local key: %w", err)
	}

	s.key = key
	s.loaded = true

	return nil
}

// Seal encodes value as JSON and encrypts it.
func (s *Sealer) Seal(value any) (string, error) {
	if !s.loaded {
		return "", errNoKey
	}

	token := paseto.NewToken()

	if err := token.Set(payloadClaim, value); err != nil {
		return "", fmt.Errorf("failed to encode sealed payload: %w", err)
	}

	return token.V4Encrypt(s.key, []byte(Implicit)), nil
}

// Open decrypts sealed and decodes its payload into out.
func (s *Sealer) Open(sealed string, out any) error {
	if !s.loaded {
		return errNoKey
	}

	// Sealed values are long-lived; the store decides when they are stale.
	parser := paseto.MakeParser(nil)

	token, err := parser.ParseV4Local(s.key, sealed, []byte(Implicit))
	if err != nil {
		return fmt.Errorf("failed to open sealed value: %w", err)
	}

	if err := token.Get(payloadClaim, out); err != nil {
		return fmt.Errorf("failed to decode sealed payload: %w", err)
	}

	return nil
}
