// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package authenticated

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type secret struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

func TestSealRoundTrip(t *testing.T) {
	t.Parallel()

	s, err := NewSealerFromHex(NewSecretKeyHex())
	require.NoError(t, err)

	sealed, err := s.Seal(secret{Name: "reader", Token: "abc"})
	require.NoError(t, err)
	assert.NotContains(t, sealed, "abc")

	var got secret
	require.NoError(t, s.Open(sealed, &got))
	assert.Equal(t, secret{Name: "reader", Token: "abc"}, got)
}

func TestOpenWithWrongKey(t *testing.T) {
	t.Parallel()

	a, err := NewSealerFromHex(NewSecretKeyHex())
	require.NoError(t, err)

	b, err := NewSealerFromHex(NewSecretKeyHex())
	require.NoError(t, err)

	sealed, err := a.Seal(secret{Name: "x"})
	require.NoError(t, err)

	var got secret
	assert.Error(t, b.Open(sealed, &got))
}

func TestInvalidKey(t *testing.T) {
	t.Parallel()

	_, err := NewSealerFromHex("not hex")
	require.Error(t, err)

	var s Sealer
	_, err = s.Seal("x")
	assert.ErrorIs(t, err, errNoKey)
}
