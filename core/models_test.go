// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "codeberg.org/yomu/mangadexkit/core"
)

var (
	mangaID   = uuid.MustParse("a96676e5-8ae2-425e-b549-7f15dd34a6d8")
	chapterID = uuid.MustParse("0e9a9c54-0d8f-4a2b-8d84-6e1f6f0ab0c1")
	authorID  = uuid.MustParse("f5c2a6f9-5a2b-4b0b-9d1e-3c0d1a2b3c4d")
	coverID   = uuid.MustParse("b6c7d8e9-1a2b-4c3d-8e4f-5a6b7c8d9e0f")
	groupID   = uuid.MustParse("c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f")
	userID    = uuid.MustParse("d4e5f6a7-b8c9-4d0e-9f1a-2b3c4d5e6f7a")
)

const mangaJSON = `{
	"id": "a96676e5-8ae2-425e-b549-7f15dd34a6d8",
	"type": "manga",
	"attributes": {
		"title": {"en": "Frieren: Beyond Journey's End"},
		"altTitles": [{"ja": "葬送のフリーレン"}, {"ja-ro": "Sousou no Frieren"}, {"ja": "フリーレン"}],
		"description": [],
		"isLocked": false,
		"links": {"al": "118586", "mu": "179766"},
		"originalLanguage": "ja",
		"lastVolume": "",
		"lastChapter": null,
		"publicationDemographic": "shounen",
		"status": "ongoing",
		"year": 2020,
		"contentRating": "safe",
		"tags": [{
			"id": "87cc87cd-a395-47af-b27a-93258283bbc6",
			"type": "tag",
			"attributes": {"name": {"en": "Adventure"}, "description": [], "group": "genre"}
		}],
		"state": "published",
		"chapterNumbersResetOnNewVolume": false,
		"availableTranslatedLanguages": ["en", null, "fr"],
		"latestUploadedChapter": null,
		"createdAt": "2020-04-10T19:13:35+00:00",
		"updatedAt": "2024-01-02T03:04:05+00:00",
		"version": 42
	},
	"relationships": [
		{"id": "f5c2a6f9-5a2b-4b0b-9d1e-3c0d1a2b3c4d", "type": "author", "attributes": {"name": "Yamada Kanehito", "biography": []}},
		{"id": "f5c2a6f9-5a2b-4b0b-9d1e-3c0d1a2b3c4d", "type": "artist"},
		{"id": "b6c7d8e9-1a2b-4c3d-8e4f-5a6b7c8d9e0f", "type": "cover_art", "attributes": {"volume": "1", "fileName": "cover.jpg", "locale": "ja"}},
		{"id": "0e9a9c54-0d8f-4a2b-8d84-6e1f6f0ab0c1", "type": "manga", "related": "spin_off"},
		{"id": "d4e5f6a7-b8c9-4d0e-9f1a-2b3c4d5e6f7a", "type": "creator", "attributes": {"username": "uploader", "roles": ["ROLE_USER"], "version": 1}}
	]
}`

func TestMangaUnmarshal(t *testing.T) {
	t.Parallel()

	var m Manga
	require.NoError(t, json.Unmarshal([]byte(mangaJSON), &m))

	assert.Equal(t, mangaID, m.ID)
	assert.Equal(t, "Frieren: Beyond Journey's End", Preferred(m.Title))
	assert.Nil(t, m.Description, "empty array decodes to an empty map")
	assert.Equal(t, "118586", m.Links["al"])
	assert.Equal(t, Shounen, m.Demographic)
	assert.Equal(t, StatusOngoing, m.Status)
	assert.Equal(t, 2020, m.Year)
	assert.Equal(t, Safe, m.ContentRating)
	assert.Equal(t, []string{"en", "fr"}, m.AvailableTranslatedLanguages)
	assert.Equal(t, uuid.Nil, m.LatestUploadedChapter)
	assert.True(t, time.Date(2020, 4, 10, 19, 13, 35, 0, time.UTC).Equal(m.CreatedAt), m.CreatedAt)
	assert.Equal(t, 42, m.Version)
	assert.Equal(t, ReadingStatusNone, m.ReadingStatus)
	assert.False(t, m.IsFollowed)

	require.Len(t, m.Tags, 1)
	assert.Equal(t, "Adventure", m.Tags[0].Name["en"])
	assert.Equal(t, "genre", m.Tags[0].Group)

	require.Len(t, m.Authors, 1)
	assert.Equal(t, "Yamada Kanehito", m.Authors[0].Name)
	require.Len(t, m.Artists, 1)
	assert.Equal(t, authorID, m.Artists[0].ID)
	assert.Empty(t, m.Artists[0].Name, "relationship without attributes carries only the id")

	require.NotNil(t, m.Cover)
	assert.Equal(t, coverID, m.Cover.ID)
	assert.Equal(t, mangaID, m.Cover.MangaID)
	assert.Equal(t, "https://uploads.mangadex.org/covers/"+mangaID.String()+"/cover.jpg.256.jpg",
		m.Cover.URL(mangaID, CoverSmall))

	assert.Equal(t, []RelatedManga{{ID: chapterID, Related: "spin_off"}}, m.Related)

	require.NotNil(t, m.Creator)
	assert.Equal(t, "uploader", m.Creator.Username)
	assert.Equal(t, userID, m.Creator.ID)
}

func TestFlattenAltTitles(t *testing.T) {
	t.Parallel()

	var m Manga
	require.NoError(t, json.Unmarshal([]byte(mangaJSON), &m))

	assert.Equal(t, map[string][]string{
		"ja":    {"葬送のフリーレン", "フリーレン"},
		"ja-ro": {"Sousou no Frieren"},
	}, m.FlattenAltTitles())
}

func TestChapterUnmarshal(t *testing.T) {
	t.Parallel()

	const body = `{
		"id": "0e9a9c54-0d8f-4a2b-8d84-6e1f6f0ab0c1",
		"type": "chapter",
		"attributes": {
			"title": "The Journey's End",
			"volume": "1",
			"chapter": "1",
			"pages": 48,
			"translatedLanguage": "en",
			"externalUrl": null,
			"version": 3,
			"createdAt": "2021-01-01T00:00:00+00:00",
			"updatedAt": "2021-01-01T00:00:00+00:00",
			"publishAt": "2021-01-02T00:00:00+00:00",
			"readableAt": "2021-01-02T00:00:00+00:00"
		},
		"relationships": [
			{"id": "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f", "type": "scanlation_group", "attributes": {"name": "Party of Four", "focusedLanguages": ["en"]}},
			{"id": "d4e5f6a7-b8c9-4d0e-9f1a-2b3c4d5e6f7a", "type": "user", "attributes": {"username": "uploader"}},
			{"id": "a96676e5-8ae2-425e-b549-7f15dd34a6d8", "type": "manga", "attributes": {"title": {"en": "Frieren"}, "originalLanguage": "ja"}}
		]
	}`

	var c Chapter
	require.NoError(t, json.Unmarshal([]byte(body), &c))

	assert.Equal(t, chapterID, c.ID)
	assert.Equal(t, "1", c.Chapter)
	assert.Equal(t, 48, c.Pages)
	assert.Empty(t, c.ExternalURL)

	require.Len(t, c.ScanlationGroups, 1)
	assert.Equal(t, groupID, c.ScanlationGroups[0].ID)
	assert.Equal(t, "Party of Four", c.ScanlationGroups[0].Name)

	require.NotNil(t, c.Uploader)
	assert.Equal(t, "uploader", c.Uploader.Username)

	require.NotNil(t, c.Manga)
	assert.Equal(t, mangaID, c.Manga.ID)
	assert.Equal(t, "ja", c.Manga.OriginalLanguage)
}

func TestScanlationGroupUnmarshal(t *testing.T) {
	t.Parallel()

	const body = `{
		"id": "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f",
		"type": "scanlation_group",
		"attributes": {"name": "Party of Four", "official": true, "focusedLanguages": ["en", "fr"]},
		"relationships": [
			{"id": "d4e5f6a7-b8c9-4d0e-9f1a-2b3c4d5e6f7a", "type": "leader", "attributes": {"username": "himmel"}},
			{"id": "d4e5f6a7-b8c9-4d0e-9f1a-2b3c4d5e6f7a", "type": "member", "attributes": {"username": "himmel"}},
			{"id": "a96676e5-8ae2-425e-b549-7f15dd34a6d8", "type": "member", "attributes": {"username": "heiter"}}
		]
	}`

	var g ScanlationGroup
	require.NoError(t, json.Unmarshal([]byte(body), &g))

	assert.True(t, g.Official)
	assert.Equal(t, []string{"en", "fr"}, g.FocusedLanguages)
	require.NotNil(t, g.Leader)
	assert.Equal(t, "himmel", g.Leader.Username)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "heiter", g.Members[1].Username)
}

func TestAuthorUnmarshal(t *testing.T) {
	t.Parallel()

	const body = `{
		"id": "f5c2a6f9-5a2b-4b0b-9d1e-3c0d1a2b3c4d",
		"type": "author",
		"attributes": {"name": "Abe Tsukasa", "biography": {"en": "Illustrator."}, "twitter": "https://twitter.com/example", "pixiv": null},
		"relationships": [
			{"id": "a96676e5-8ae2-425e-b549-7f15dd34a6d8", "type": "manga"}
		]
	}`

	var a Author
	require.NoError(t, json.Unmarshal([]byte(body), &a))

	assert.Equal(t, "Abe Tsukasa", a.Name)
	assert.Equal(t, "Illustrator.", a.Biography["en"])
	assert.Equal(t, "https://twitter.com/example", a.Socials.Twitter)
	assert.Empty(t, a.Socials.Pixiv)
	assert.Equal(t, []uuid.UUID{mangaID}, a.MangaIDs)
}

func TestOptionalMap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want OptionalMap[int]
	}{
		{"Object", `{"1": 3, "10": 7}`, OptionalMap[int]{"1": 3, "10": 7}},
		{"EmptyArray", `[]`, nil},
		{"Null", `null`, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var got OptionalMap[int]
			require.NoError(t, json.Unmarshal([]byte(tc.body), &got))
			assert.Equal(t, tc.want, got)
		})
	}

	var notMap OptionalMap[int]
	require.Error(t, json.Unmarshal([]byte(`[1, 2]`), &notMap))
}

func TestPreferred(t *testing.T) {
	t.Parallel()

	title := LocalizedString{"ja": "葬送のフリーレン", "en": "Frieren", "de": "Frieren (de)"}

	assert.Equal(t, "葬送のフリーレン", Preferred(title, "ja"))
	assert.Equal(t, "Frieren", Preferred(title, "fr"))
	assert.Equal(t, "Frieren (de)", Preferred(LocalizedString{"ja": "x", "de": "Frieren (de)"}))
	assert.Empty(t, Preferred(nil))
}

func TestAtHomeServerPageURLs(t *testing.T) {
	t.Parallel()

	const body = `{
		"result": "ok",
		"baseUrl": "https://cdn.example.mangadex.network",
		"chapter": {"hash": "abc123", "data": ["1.png", "2.png"], "dataSaver": ["1.jpg", "2.jpg"]}
	}`

	var s AtHomeServer
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	assert.Equal(t, []string{
		"https://cdn.example.mangadex.network/data/abc123/1.png",
		"https://cdn.example.mangadex.network/data/abc123/2.png",
	}, s.PageURLs(false))
	assert.Equal(t, []string{
		"https://cdn.example.mangadex.network/data-saver/abc123/1.jpg",
		"https://cdn.example.mangadex.network/data-saver/abc123/2.jpg",
	}, s.PageURLs(true))
}

func TestStatistics(t *testing.T) {
	t.Parallel()

	const body = `{
		"comments": {"threadId": 4242, "repliesCount": 12},
		"rating": {"average": 9.1, "bayesian": 8.9, "distribution": {"1": 2, "9": 10, "10": 30}},
		"follows": 1000
	}`

	var stats MangaStatistics
	require.NoError(t, json.Unmarshal([]byte(body), &stats))

	assert.Equal(t, 1000, stats.Follows)
	assert.Equal(t, 42, stats.Rating.TotalRatings())
	require.NotNil(t, stats.Comments)
	assert.Equal(t, "https://forums.mangadex.org/threads/4242", stats.Comments.URL("https://forums.mangadex.org"))

	var empty MangaStatistics
	require.NoError(t, json.Unmarshal([]byte(`{"comments": null, "rating": {"distribution": []}, "follows": 0}`), &empty))
	assert.Nil(t, empty.Comments)
	assert.Zero(t, empty.Rating.TotalRatings())
}
