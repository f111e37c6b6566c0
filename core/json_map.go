// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// OptionalMap is a map that also accepts an empty JSON array.
//
// The service encodes an empty localized string or link set as [] instead of {}.
//
// Example JSON values that this type can handle:
//   - Valid map:   {"en": "Frieren"}
//   - Empty data:  []
//   - Missing:     null
type OptionalMap[V any] map[string]V

// UnmarshalJSON sets the map to nil for an empty array and decodes normally otherwise.
func (m *OptionalMap[V]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("[]")) || bytes.Equal(trimmed, []byte("null")) {
		*m = nil

		return nil
	}

	var nm map[string]V
	if err := json.Unmarshal(data, &nm); err != nil {
		return err
	}

	*m = OptionalMap[V](nm)

	return nil
}

// LocalizedString maps language codes to text.
type LocalizedString = OptionalMap[string]

// Preferred returns the text in the first of langs that is present, then English,
// then the alphabetically first language available. It returns "" for an empty map.
func Preferred(s LocalizedString, langs ...string) string {
	for _, lang := range append(slices.Clone(langs), "en") {
		if v, ok := s[lang]; ok && v != "" {
			return v
		}
	}

	for _, k := range slices.Sorted(maps.Keys(s)) {
		if s[k] != "" {
			return s[k]
		}
	}

	return ""
}
