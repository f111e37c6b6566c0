// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"codeberg.org/yomu/mangadexkit/core/requests"
)

// GetChapter fetches one chapter with its groups, uploader and manga.
func (c *Client) GetChapter(ctx context.Context, id uuid.UUID) (Chapter, error) {
	var resp entity[Chapter]
	if err := c.get(ctx, c.endpoints.ChapterURL(id), &resp); err != nil {
		return Chapter{}, err
	}

	return resp.Data, nil
}

// GetChapterList fetches up to MaxLimit chapters by id.
func (c *Client) GetChapterList(ctx context.Context, ids []uuid.UUID, limit, offset int) (List[Chapter], error) {
	if err := checkIDs(ids); err != nil {
		return List[Chapter]{}, err
	}

	if err := checkPage(limit, offset); err != nil {
		return List[Chapter]{}, err
	}

	var resp List[Chapter]
	if err := c.get(ctx, c.endpoints.ChapterListURL(ids, limit, offset, c.filter), &resp); err != nil {
		return List[Chapter]{}, err
	}

	return resp, nil
}

// GetChapterBatch fetches any number of chapters, MaxLimit per request.
func (c *Client) GetChapterBatch(ctx context.Context, ids []uuid.UUID, policy BatchPolicy) (BatchResult[Chapter], error) {
	return runBatch(ctx, ids, policy, func(ctx context.Context, chunk []uuid.UUID) ([]Chapter, error) {
		list, err := c.GetChapterList(ctx, chunk, len(chunk), 0)

		return list.Data, err
	})
}

// GetAtHomeServer asks for a server that delivers the pages of a chapter.
// Assignments expire after a few minutes, so the answer is never cached.
func (c *Client) GetAtHomeServer(ctx context.Context, chapterID uuid.UUID) (AtHomeServer, error) {
	var server AtHomeServer
	if err := c.requester.Fetch(ctx, noCacheGet(c.endpoints.AtHomeServerURL(chapterID, c.filter)), &server); err != nil {
		return AtHomeServer{}, err
	}

	return server, nil
}

func noCacheGet(rawURL string) requests.RequestOptions {
	return requests.RequestOptions{Method: http.MethodGet, URL: rawURL, NoCache: true}
}
