// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core_test

import (
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/yomu/mangadexkit/config"
	. "codeberg.org/yomu/mangadexkit/core"
	"codeberg.org/yomu/mangadexkit/core/requests"
)

func defaultEndpoints(t *testing.T) Endpoints {
	t.Helper()

	e, err := NewEndpoints(config.Default())
	require.NoError(t, err)

	return e
}

// parse splits a built URL into its path and query for order-insensitive checks.
func parse(t *testing.T, raw string) (string, url.Values) {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u.Scheme + "://" + u.Host + u.Path, u.Query()
}

func TestNewEndpoints(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.API.BaseURL = "https://api.example.org/"

	e, err := NewEndpoints(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.org", e.API)
	assert.Equal(t, config.DefaultUploadsURL, e.Uploads)

	cfg.API.ForumsURL = "forums.example.org"
	_, err = NewEndpoints(cfg)
	require.ErrorIs(t, err, requests.ErrInvalidURL)
}

func TestMangaURLs(t *testing.T) {
	t.Parallel()

	e := defaultEndpoints(t)

	base, q := parse(t, e.MangaURL(mangaID))
	assert.Equal(t, "https://api.mangadex.org/manga/"+mangaID.String(), base)
	assert.Equal(t, []string{"manga", "cover_art", "author", "artist", "creator"}, q["includes[]"])

	filter := config.ContentFilter{ContentRating: []string{"safe", "erotica"}}
	base, q = parse(t, e.MangaListURL([]uuid.UUID{mangaID, chapterID}, 2, 10, filter))
	assert.Equal(t, "https://api.mangadex.org/manga", base)
	assert.Equal(t, []string{mangaID.String(), chapterID.String()}, q["ids[]"])
	assert.Equal(t, "2", q.Get("limit"))
	assert.Equal(t, "10", q.Get("offset"))
	assert.Equal(t, []string{"safe", "erotica"}, q["contentRating[]"])
	assert.NotContains(t, q, "translatedLanguage[]")
}

func TestRandomMangaURL(t *testing.T) {
	t.Parallel()

	e := defaultEndpoints(t)

	_, q := parse(t, e.RandomMangaURL(TagFilter{}, config.ContentFilter{}))
	assert.NotContains(t, q, "includedTags[]")
	assert.NotContains(t, q, "includedTagsMode")
	assert.NotContains(t, q, "contentRating[]")

	_, q = parse(t, e.RandomMangaURL(TagFilter{
		Included:     []uuid.UUID{authorID},
		Excluded:     []uuid.UUID{groupID, userID},
		ExcludedMode: TagModeAnd,
	}, config.ContentFilter{}))
	assert.Equal(t, []string{authorID.String()}, q["includedTags[]"])
	assert.Equal(t, "AND", q.Get("includedTagsMode"))
	assert.Equal(t, []string{groupID.String(), userID.String()}, q["excludedTags[]"])
	assert.Equal(t, "AND", q.Get("excludedTagsMode"))
}

func TestFeedURLsApplyFilter(t *testing.T) {
	t.Parallel()

	e := defaultEndpoints(t)
	listID := uuid.MustParse("e1f2a3b4-c5d6-4e7f-8a9b-0c1d2e3f4a5b")

	filter := config.ContentFilter{
		ContentRating:            []string{"safe"},
		OriginalLanguage:         []string{"ja"},
		ExcludedOriginalLanguage: []string{"ko"},
		ExcludedGroups:           []string{groupID.String()},
		ExcludedUploaders:        []string{userID.String()},
	}

	cases := []struct {
		name  string
		url   string
		path  string
		order [2]string
	}{
		{"MangaFeed", e.MangaFeedURL(mangaID, 100, 0, filter), "/manga/" + mangaID.String() + "/feed", [2]string{"order[chapter]", "desc"}},
		{"FollowedFeed", e.FollowedFeedURL(100, 0, filter), "/user/follows/manga/feed", [2]string{"order[publishAt]", "desc"}},
		{"CustomListFeed", e.CustomListFeedURL(listID, 100, 0, filter), "/list/" + listID.String() + "/feed", [2]string{"order[readableAt]", "desc"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			base, q := parse(t, tc.url)
			assert.Equal(t, "https://api.mangadex.org"+tc.path, base)
			assert.Equal(t, []string{"safe"}, q["contentRating[]"])
			assert.Equal(t, []string{"en"}, q["translatedLanguage[]"], "defaults to English")
			assert.Equal(t, []string{"ja"}, q["originalLanguage[]"])
			assert.Equal(t, []string{"ko"}, q["excludedOriginalLanguage[]"])
			assert.Equal(t, []string{groupID.String()}, q["excludedGroups[]"])
			assert.Equal(t, []string{userID.String()}, q["excludedUploaders[]"])
			assert.Equal(t, tc.order[1], q.Get(tc.order[0]))
		})
	}

	_, q := parse(t, e.FollowedFeedURL(10, 0, config.ContentFilter{TranslatedLanguage: []string{"fr", "de"}}))
	assert.Equal(t, []string{"fr", "de"}, q["translatedLanguage[]"])
	assert.Equal(t, "1", q.Get("includeExternalUrl"))
	assert.Equal(t, "0", q.Get("includeUnavailable"))
}

func TestAtHomeServerURL(t *testing.T) {
	t.Parallel()

	e := defaultEndpoints(t)

	assert.Equal(t, "https://api.mangadex.org/at-home/server/"+chapterID.String(),
		e.AtHomeServerURL(chapterID, config.ContentFilter{}))
	assert.Equal(t, "https://api.mangadex.org/at-home/server/"+chapterID.String()+"?forcePort443=true",
		e.AtHomeServerURL(chapterID, config.ContentFilter{ForcePort443: true}))
}

func TestLibraryURLs(t *testing.T) {
	t.Parallel()

	e := defaultEndpoints(t)
	id := mangaID.String()

	assert.Equal(t, "https://api.mangadex.org/manga/"+id+"/read", e.ReadMarkersURL(mangaID))
	assert.Equal(t, "https://api.mangadex.org/manga/"+id+"/status", e.ReadingStatusURL(mangaID))
	assert.Equal(t, "https://api.mangadex.org/manga/status", e.AllReadingStatusesURL())
	assert.Equal(t, "https://api.mangadex.org/manga/"+id+"/follow", e.FollowURL(mangaID))
	assert.Equal(t, "https://api.mangadex.org/user/follows/manga/"+id, e.IsFollowingURL(mangaID))

	base, q := parse(t, e.GroupedReadMarkersURL([]uuid.UUID{mangaID}))
	assert.Equal(t, "https://api.mangadex.org/manga/read", base)
	assert.Equal(t, "true", q.Get("grouped"))
	assert.Equal(t, []string{id}, q["ids[]"])
}

func TestCatalogURLs(t *testing.T) {
	t.Parallel()

	e := defaultEndpoints(t)

	_, q := parse(t, e.CoversForMangaURL([]uuid.UUID{mangaID}, 100, 0))
	assert.Equal(t, []string{mangaID.String()}, q["manga[]"])
	assert.Equal(t, "desc", q.Get("order[volume]"))

	_, q = parse(t, e.AuthorListURL([]uuid.UUID{authorID}))
	assert.Equal(t, "asc", q.Get("order[name]"))
	assert.Equal(t, "1", q.Get("limit"))

	_, q = parse(t, e.ScanlationGroupURL(groupID))
	assert.Equal(t, []string{"leader", "member"}, q["includes[]"])

	_, q = parse(t, e.MangaStatisticsBatchURL([]uuid.UUID{mangaID, authorID}))
	assert.Equal(t, []string{mangaID.String(), authorID.String()}, q["manga[]"])

	_, q = parse(t, e.ChapterStatisticsBatchURL([]uuid.UUID{chapterID}))
	assert.Equal(t, []string{chapterID.String()}, q["chapter[]"])

	assert.Equal(t, "https://api.mangadex.org/manga/tag", e.TagsURL())
	assert.Equal(t, "https://api.mangadex.network/report", e.ReportURL())
}

func TestCoverURL(t *testing.T) {
	t.Parallel()

	base := "https://uploads.mangadex.org/covers/" + mangaID.String() + "/cover.jpg"

	assert.Equal(t, base, CoverURL(config.DefaultUploadsURL, mangaID, "cover.jpg", CoverOriginal))
	assert.Equal(t, base+".512.jpg", CoverURL(config.DefaultUploadsURL, mangaID, "cover.jpg", CoverMedium))
	assert.Equal(t, base+".256.jpg", CoverURL(config.DefaultUploadsURL, mangaID, "cover.jpg", CoverSmall))

	cfg := config.Default()
	cfg.API.UploadsURL = "https://uploads.example.org"

	e, err := NewEndpoints(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://uploads.example.org/covers/"+mangaID.String()+"/cover.jpg",
		e.CoverImageURL(Cover{MangaID: mangaID, FileName: "cover.jpg"}, CoverOriginal))
}
