// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package idgen makes short identifiers for correlating log lines of one request.
package idgen

import (
	"crypto/rand"
	"encoding/base64"
	"time"
)

// Make makes a short ID from the wall-clock time (hhmmss) and 3 bytes of entropy.
func Make() string {
	return makeAt(time.Now())
}

// Child derives an ID for a sub-request of parent, such as the retry after a
// token refresh. An empty parent yields a fresh ID.
func Child(parent string) string {
	if parent == "" {
		return Make()
	}

	return parent + "." + entropy()
}

func makeAt(t time.Time) string {
	return t.Format("150405") + entropy()
}

func entropy() string {
	buf := [3]byte{'a', 'a', 'a'}

	_, _ = rand.Read(buf[:])

	return base64.RawURLEncoding.EncodeToString(buf[:])
}
