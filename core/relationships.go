// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Relationship types, also used as includes[] values to expand them.
const (
	relAuthor          = "author"
	relArtist          = "artist"
	relCoverArt        = "cover_art"
	relManga           = "manga"
	relCreator         = "creator"
	relScanlationGroup = "scanlation_group"
	relUser            = "user"
	relLeader          = "leader"
	relMember          = "member"
)

// relationship is one element of a relationships array. Raw holds the whole
// element so that an expanded relationship can be decoded as its own entity.
type relationship struct {
	ID      uuid.UUID
	Type    string
	Related string
	Raw     json.RawMessage
}

func (r *relationship) UnmarshalJSON(data []byte) error {
	var head struct {
		ID      uuid.UUID `json:"id"`
		Type    string    `json:"type"`
		Related string    `json:"related"`
	}

	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	r.ID, r.Type, r.Related = head.ID, head.Type, head.Related
	r.Raw = append(json.RawMessage(nil), data...)

	return nil
}

// decodeAs decodes the relationship as the entity it points to. Without includes[]
// only the ID is filled.
func decodeAs[T any](r relationship) (T, error) {
	var v T
	if err := json.Unmarshal(r.Raw, &v); err != nil {
		return v, fmt.Errorf("decoding %s relationship %s: %w", r.Type, r.ID, err)
	}

	return v, nil
}
