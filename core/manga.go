// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"

	"github.com/google/uuid"
)

// GetManga fetches one manga with its authors, artists, cover and creator.
func (c *Client) GetManga(ctx context.Context, id uuid.UUID) (Manga, error) {
	var resp entity[Manga]
	if err := c.get(ctx, c.endpoints.MangaURL(id), &resp); err != nil {
		return Manga{}, err
	}

	return resp.Data, nil
}

// GetMangaList fetches up to MaxLimit manga by id.
func (c *Client) GetMangaList(ctx context.Context, ids []uuid.UUID, limit, offset int) (List[Manga], error) {
	if err := checkIDs(ids); err != nil {
		return List[Manga]{}, err
	}

	if err := checkPage(limit, offset); err != nil {
		return List[Manga]{}, err
	}

	var resp List[Manga]
	if err := c.get(ctx, c.endpoints.MangaListURL(ids, limit, offset, c.filter), &resp); err != nil {
		return List[Manga]{}, err
	}

	return resp, nil
}

// GetMangaBatch fetches any number of manga, MaxLimit per request.
func (c *Client) GetMangaBatch(ctx context.Context, ids []uuid.UUID, policy BatchPolicy) (BatchResult[Manga], error) {
	return runBatch(ctx, ids, policy, func(ctx context.Context, chunk []uuid.UUID) ([]Manga, error) {
		list, err := c.GetMangaList(ctx, chunk, len(chunk), 0)

		return list.Data, err
	})
}

// GetRandomManga picks a random manga allowed by the content filter and tags.
func (c *Client) GetRandomManga(ctx context.Context, tags TagFilter) (Manga, error) {
	var resp entity[Manga]

	// Every call must reach the service.
	err := c.requester.Fetch(ctx, noCacheGet(c.endpoints.RandomMangaURL(tags, c.filter)), &resp)
	if err != nil {
		return Manga{}, err
	}

	return resp.Data, nil
}

// GetMangaFeed fetches one page of the chapters of a manga, newest first.
func (c *Client) GetMangaFeed(ctx context.Context, id uuid.UUID, limit, offset int) (List[Chapter], error) {
	if err := checkPage(limit, offset); err != nil {
		return List[Chapter]{}, err
	}

	var resp List[Chapter]
	if err := c.get(ctx, c.endpoints.MangaFeedURL(id, limit, offset, c.filter), &resp); err != nil {
		return List[Chapter]{}, err
	}

	return resp, nil
}

// GetAllChapters pages through the whole feed of a manga.
func (c *Client) GetAllChapters(ctx context.Context, id uuid.UUID) ([]Chapter, error) {
	var chapters []Chapter

	for offset := 0; ; offset += MaxLimit {
		page, err := c.GetMangaFeed(ctx, id, MaxLimit, offset)
		if err != nil {
			return nil, err
		}

		chapters = append(chapters, page.Data...)

		if len(page.Data) == 0 || offset+MaxLimit >= page.Total {
			return chapters, nil
		}
	}
}

// FillLibraryState sets the reading status and follow state of m for the
// logged in user.
func (c *Client) FillLibraryState(ctx context.Context, m *Manga) error {
	status, err := c.GetReadingStatus(ctx, m.ID)
	if err != nil {
		return err
	}

	followed, err := c.IsFollowingManga(ctx, m.ID)
	if err != nil {
		return err
	}

	m.ReadingStatus, m.IsFollowed = status, followed

	return nil
}
