// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Codes the service uses that are not BCP 47, or whose standard name is
// ambiguous for readers.
var languageOverrides = map[string]string{
	"ja-ro": "Japanese (Romanized)",
	"ko-ro": "Korean (Romanized)",
	"zh-ro": "Chinese (Romanized)",
	"zh":    "Chinese (Simplified)",
	"zh-hk": "Chinese (Traditional)",
	"pt-br": "Portuguese (Brazil)",
	"es-la": "Spanish (Latin America)",
}

// Language returns the English display name of a language code as used by the
// service. Unknown codes are returned unchanged.
func Language(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))

	if name, ok := languageOverrides[code]; ok {
		return name
	}

	tag, err := language.Parse(code)
	if err != nil {
		return code
	}

	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}

	return code
}
