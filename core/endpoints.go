// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"cmp"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"codeberg.org/yomu/mangadexkit/config"
	"codeberg.org/yomu/mangadexkit/core/requests"
	"codeberg.org/yomu/mangadexkit/core/utils"
)

const (
	// MaxLimit is the largest page size and the largest ids[] list the service accepts.
	MaxLimit = 100

	defaultLanguage = "en"
)

var (
	mangaIncludes   = []string{relManga, relCoverArt, relAuthor, relArtist, relCreator}
	chapterIncludes = []string{relScanlationGroup, relUser, relManga}
)

// Endpoints holds the base URLs requests are built against. Paths have no
// trailing slash.
type Endpoints struct {
	API     string
	Network string
	Uploads string
	Forums  string
}

// NewEndpoints validates the base URLs of cfg.
func NewEndpoints(cfg *config.ClientConfig) (Endpoints, error) {
	var e Endpoints

	for _, base := range []struct {
		raw  string
		name string
		dst  *string
	}{
		{cfg.API.BaseURL, "API", &e.API},
		{cfg.API.NetworkURL, "network", &e.Network},
		{cfg.API.UploadsURL, "uploads", &e.Uploads},
		{cfg.API.ForumsURL, "forums", &e.Forums},
	} {
		parsed, err := utils.ParseURL(base.raw, base.name)
		if err != nil {
			return Endpoints{}, fmt.Errorf("%w: %w", requests.ErrInvalidURL, err)
		}

		*base.dst = parsed.String()
	}

	return e, nil
}

// query collects repeated and single parameters in a stable order.
type query struct {
	url.Values
}

func newQuery() query {
	return query{url.Values{}}
}

func (q query) ids(key string, ids []uuid.UUID) query {
	for _, id := range ids {
		q.Add(key, id.String())
	}

	return q
}

func (q query) list(key string, values ...string) query {
	for _, v := range values {
		if v != "" {
			q.Add(key, v)
		}
	}

	return q
}

func (q query) page(limit, offset int) query {
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	return q
}

// ratings adds contentRating[]. An empty filter leaves the service default.
func (q query) ratings(f config.ContentFilter) query {
	return q.list("contentRating[]", f.ContentRating...)
}

// chapterFilters adds the parameters that narrow chapter lists and feeds.
func (q query) chapterFilters(f config.ContentFilter) query {
	q.ratings(f)

	if len(f.TranslatedLanguage) == 0 {
		q.Add("translatedLanguage[]", defaultLanguage)
	} else {
		q.list("translatedLanguage[]", f.TranslatedLanguage...)
	}

	q.list("originalLanguage[]", f.OriginalLanguage...)
	q.list("excludedOriginalLanguage[]", f.ExcludedOriginalLanguage...)
	q.list("excludedGroups[]", f.ExcludedGroups...)
	q.list("excludedUploaders[]", f.ExcludedUploaders...)

	return q
}

func (q query) url(base string) string {
	if len(q.Values) == 0 {
		return base
	}

	return base + "?" + q.Encode()
}

// GET endpoints

func (e Endpoints) MangaURL(id uuid.UUID) string {
	return newQuery().list("includes[]", mangaIncludes...).url(e.API + "/manga/" + id.String())
}

func (e Endpoints) MangaListURL(ids []uuid.UUID, limit, offset int, f config.ContentFilter) string {
	return newQuery().
		ids("ids[]", ids).
		page(limit, offset).
		list("includes[]", mangaIncludes...).
		ratings(f).
		url(e.API + "/manga")
}

// TagFilter restricts the random manga pick by tag.
type TagFilter struct {
	Included     []uuid.UUID
	IncludedMode TagMode // TagModeAnd when empty
	Excluded     []uuid.UUID
	ExcludedMode TagMode // TagModeOr when empty
}

func (e Endpoints) RandomMangaURL(tags TagFilter, f config.ContentFilter) string {
	q := newQuery().list("includes[]", mangaIncludes...).ratings(f)

	if len(tags.Included) > 0 {
		q.ids("includedTags[]", tags.Included)
		q.Set("includedTagsMode", string(cmp.Or(tags.IncludedMode, TagModeAnd)))
	}

	if len(tags.Excluded) > 0 {
		q.ids("excludedTags[]", tags.Excluded)
		q.Set("excludedTagsMode", string(cmp.Or(tags.ExcludedMode, TagModeOr)))
	}

	return q.url(e.API + "/manga/random")
}

func (e Endpoints) MangaFeedURL(id uuid.UUID, limit, offset int, f config.ContentFilter) string {
	q := newQuery().page(limit, offset).chapterFilters(f).list("includes[]", relScanlationGroup, relUser)
	q.Set("order[chapter]", string(Descending))

	return q.url(e.API + "/manga/" + id.String() + "/feed")
}

func (e Endpoints) ChapterURL(id uuid.UUID) string {
	return newQuery().list("includes[]", chapterIncludes...).url(e.API + "/chapter/" + id.String())
}

func (e Endpoints) ChapterListURL(ids []uuid.UUID, limit, offset int, f config.ContentFilter) string {
	return newQuery().
		ids("ids[]", ids).
		page(limit, offset).
		list("includes[]", chapterIncludes...).
		ratings(f).
		url(e.API + "/chapter")
}

func (e Endpoints) AtHomeServerURL(chapterID uuid.UUID, f config.ContentFilter) string {
	q := newQuery()
	if f.ForcePort443 {
		q.Set("forcePort443", "true")
	}

	return q.url(e.API + "/at-home/server/" + chapterID.String())
}

func (e Endpoints) ReadMarkersURL(mangaID uuid.UUID) string {
	return e.API + "/manga/" + mangaID.String() + "/read"
}

func (e Endpoints) GroupedReadMarkersURL(mangaIDs []uuid.UUID) string {
	q := newQuery().ids("ids[]", mangaIDs)
	q.Set("grouped", "true")

	return q.url(e.API + "/manga/read")
}

func (e Endpoints) ReadingStatusURL(mangaID uuid.UUID) string {
	return e.API + "/manga/" + mangaID.String() + "/status"
}

func (e Endpoints) AllReadingStatusesURL() string {
	return e.API + "/manga/status"
}

// FollowURL is used with POST to follow and DELETE to unfollow.
func (e Endpoints) FollowURL(mangaID uuid.UUID) string {
	return e.API + "/manga/" + mangaID.String() + "/follow"
}

func (e Endpoints) IsFollowingURL(mangaID uuid.UUID) string {
	return e.API + "/user/follows/manga/" + mangaID.String()
}

func (e Endpoints) FollowedFeedURL(limit, offset int, f config.ContentFilter) string {
	q := newQuery().page(limit, offset).chapterFilters(f).list("includes[]", chapterIncludes...)
	q.Set("order[publishAt]", string(Descending))
	q.Set("includeExternalUrl", "1")
	q.Set("includeUnavailable", "0")

	return q.url(e.API + "/user/follows/manga/feed")
}

func (e Endpoints) CustomListFeedURL(listID uuid.UUID, limit, offset int, f config.ContentFilter) string {
	q := newQuery().page(limit, offset).chapterFilters(f).list("includes[]", chapterIncludes...)
	q.Set("order[readableAt]", string(Descending))

	return q.url(e.API + "/list/" + listID.String() + "/feed")
}

func (e Endpoints) CoverURL(id uuid.UUID) string {
	return newQuery().list("includes[]", relManga).url(e.API + "/cover/" + id.String())
}

func (e Endpoints) CoversForMangaURL(mangaIDs []uuid.UUID, limit, offset int) string {
	q := newQuery().ids("manga[]", mangaIDs).page(limit, offset)
	q.Set("order[volume]", string(Descending))

	return q.url(e.API + "/cover")
}

func (e Endpoints) CoverListURL(ids []uuid.UUID) string {
	return newQuery().ids("ids[]", ids).page(len(ids), 0).list("includes[]", relManga).url(e.API + "/cover")
}

func (e Endpoints) AuthorURL(id uuid.UUID) string {
	return newQuery().list("includes[]", relManga).url(e.API + "/author/" + id.String())
}

func (e Endpoints) AuthorListURL(ids []uuid.UUID) string {
	q := newQuery().ids("ids[]", ids).page(len(ids), 0)
	q.Set("order[name]", string(Ascending))

	return q.url(e.API + "/author")
}

func (e Endpoints) ScanlationGroupURL(id uuid.UUID) string {
	return newQuery().list("includes[]", relLeader, relMember).url(e.API + "/group/" + id.String())
}

func (e Endpoints) UserURL(id uuid.UUID) string {
	return e.API + "/user/" + id.String()
}

func (e Endpoints) MangaStatisticsURL(id uuid.UUID) string {
	return e.API + "/statistics/manga/" + id.String()
}

func (e Endpoints) MangaStatisticsBatchURL(ids []uuid.UUID) string {
	return newQuery().ids("manga[]", ids).url(e.API + "/statistics/manga")
}

func (e Endpoints) ChapterStatisticsURL(id uuid.UUID) string {
	return e.API + "/statistics/chapter/" + id.String()
}

func (e Endpoints) ChapterStatisticsBatchURL(ids []uuid.UUID) string {
	return newQuery().ids("chapter[]", ids).url(e.API + "/statistics/chapter")
}

func (e Endpoints) TagsURL() string {
	return e.API + "/manga/tag"
}

// POST endpoints

func (e Endpoints) ReportURL() string {
	return e.Network + "/report"
}

// Images

// CoverURL returns the URL of a cover image on the uploads host.
func CoverURL(uploadsBase string, mangaID uuid.UUID, fileName string, size CoverSize) string {
	base := uploadsBase + "/covers/" + mangaID.String() + "/" + fileName

	switch size {
	case CoverSmall:
		return base + ".256.jpg"
	case CoverMedium:
		return base + ".512.jpg"
	default:
		return base
	}
}

// CoverImageURL is [CoverURL] against the configured uploads host.
func (e Endpoints) CoverImageURL(c Cover, size CoverSize) string {
	return CoverURL(e.Uploads, c.MangaID, c.FileName, size)
}

// CommentsURL returns the forum thread URL of c against the configured forums host.
func (e Endpoints) CommentsURL(c Comments) string {
	return c.URL(e.Forums)
}
