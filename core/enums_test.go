// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "codeberg.org/yomu/mangadexkit/core"
)

func TestContentRatingCumulative(t *testing.T) {
	t.Parallel()

	cases := []struct {
		rating ContentRating
		want   []ContentRating
	}{
		{Safe, []ContentRating{Safe}},
		{Suggestive, []ContentRating{Safe, Suggestive}},
		{Erotica, []ContentRating{Safe, Suggestive, Erotica}},
		{Pornographic, []ContentRating{Safe, Suggestive, Erotica, Pornographic}},
		{"gore", []ContentRating{Safe}},
	}

	for _, tc := range cases {
		t.Run(string(tc.rating), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, tc.rating.Cumulative())
		})
	}
}

func TestEnumValid(t *testing.T) {
	t.Parallel()

	assert.True(t, Seinen.Valid())
	assert.False(t, Demographic("kodomo").Valid())
	assert.True(t, StatusHiatus.Valid())
	assert.False(t, Status("paused").Valid())
	assert.True(t, ReadingStatusNone.Valid())
	assert.True(t, ReReading.Valid())
	assert.False(t, ReadingStatus("").Valid())
	assert.True(t, Erotica.Valid())
	assert.False(t, ContentRating("").Valid())
}

func TestLanguage(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ja-ro": "Japanese (Romanized)",
		"pt-br": "Portuguese (Brazil)",
		"ES-LA": "Spanish (Latin America)",
		"zh-hk": "Chinese (Traditional)",
		"zh":    "Chinese (Simplified)",
		"en":    "English",
		"fr":    "French",
		"!!":    "!!",
	}

	for code, want := range cases {
		assert.Equal(t, want, Language(code), code)
	}
}
