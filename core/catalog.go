// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"

	"github.com/google/uuid"

	"codeberg.org/yomu/mangadexkit/core/requests"
)

// GetCover fetches one cover.
func (c *Client) GetCover(ctx context.Context, id uuid.UUID) (Cover, error) {
	var resp entity[Cover]
	if err := c.get(ctx, c.endpoints.CoverURL(id), &resp); err != nil {
		return Cover{}, err
	}

	return resp.Data, nil
}

// GetCoversForManga fetches the covers of up to MaxLimit manga, latest volume first.
func (c *Client) GetCoversForManga(ctx context.Context, mangaIDs []uuid.UUID) (List[Cover], error) {
	if err := checkIDs(mangaIDs); err != nil {
		return List[Cover]{}, err
	}

	var resp List[Cover]
	if err := c.get(ctx, c.endpoints.CoversForMangaURL(mangaIDs, MaxLimit, 0), &resp); err != nil {
		return List[Cover]{}, err
	}

	return resp, nil
}

// GetCoverList fetches up to MaxLimit covers by id.
func (c *Client) GetCoverList(ctx context.Context, ids []uuid.UUID) (List[Cover], error) {
	if err := checkIDs(ids); err != nil {
		return List[Cover]{}, err
	}

	var resp List[Cover]
	if err := c.get(ctx, c.endpoints.CoverListURL(ids), &resp); err != nil {
		return List[Cover]{}, err
	}

	return resp, nil
}

// GetAuthor fetches one author with the ids of their manga.
func (c *Client) GetAuthor(ctx context.Context, id uuid.UUID) (Author, error) {
	var resp entity[Author]
	if err := c.get(ctx, c.endpoints.AuthorURL(id), &resp); err != nil {
		return Author{}, err
	}

	return resp.Data, nil
}

// GetAuthorList fetches up to MaxLimit authors by id, sorted by name.
func (c *Client) GetAuthorList(ctx context.Context, ids []uuid.UUID) (List[Author], error) {
	if err := checkIDs(ids); err != nil {
		return List[Author]{}, err
	}

	var resp List[Author]
	if err := c.get(ctx, c.endpoints.AuthorListURL(ids), &resp); err != nil {
		return List[Author]{}, err
	}

	return resp, nil
}

// GetScanlationGroup fetches one group with its leader and members.
func (c *Client) GetScanlationGroup(ctx context.Context, id uuid.UUID) (ScanlationGroup, error) {
	var resp entity[ScanlationGroup]
	if err := c.get(ctx, c.endpoints.ScanlationGroupURL(id), &resp); err != nil {
		return ScanlationGroup{}, err
	}

	return resp.Data, nil
}

func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	var resp entity[User]
	if err := c.get(ctx, c.endpoints.UserURL(id), &resp); err != nil {
		return User{}, err
	}

	return resp.Data, nil
}

// GetTags lists every tag.
func (c *Client) GetTags(ctx context.Context) ([]Tag, error) {
	var resp List[Tag]
	if err := c.get(ctx, c.endpoints.TagsURL(), &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

type statisticsResponse[T any] struct {
	Statistics OptionalMap[T] `json:"statistics"`
}

func (r statisticsResponse[T]) byID() (map[uuid.UUID]T, error) {
	stats := make(map[uuid.UUID]T, len(r.Statistics))

	for key, s := range r.Statistics {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, &requests.DecodeError{Body: []byte(key), Err: err}
		}

		stats[id] = s
	}

	return stats, nil
}

func getStatistics[T any](ctx context.Context, c *Client, rawURL string) (map[uuid.UUID]T, error) {
	var resp statisticsResponse[T]
	if err := c.get(ctx, rawURL, &resp); err != nil {
		return nil, err
	}

	return resp.byID()
}

// GetMangaStatistics fetches the counters of one manga.
func (c *Client) GetMangaStatistics(ctx context.Context, id uuid.UUID) (MangaStatistics, error) {
	stats, err := getStatistics[MangaStatistics](ctx, c, c.endpoints.MangaStatisticsURL(id))
	if err != nil {
		return MangaStatistics{}, err
	}

	return stats[id], nil
}

// GetMangaStatisticsBatch fetches the counters of up to MaxLimit manga.
func (c *Client) GetMangaStatisticsBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]MangaStatistics, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	return getStatistics[MangaStatistics](ctx, c, c.endpoints.MangaStatisticsBatchURL(ids))
}

// GetChapterStatistics fetches the counters of one chapter.
func (c *Client) GetChapterStatistics(ctx context.Context, id uuid.UUID) (ChapterStatistics, error) {
	stats, err := getStatistics[ChapterStatistics](ctx, c, c.endpoints.ChapterStatisticsURL(id))
	if err != nil {
		return ChapterStatistics{}, err
	}

	return stats[id], nil
}

// GetChapterStatisticsBatch fetches the counters of up to MaxLimit chapters.
func (c *Client) GetChapterStatisticsBatch(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]ChapterStatistics, error) {
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	return getStatistics[ChapterStatistics](ctx, c, c.endpoints.ChapterStatisticsBatchURL(ids))
}
