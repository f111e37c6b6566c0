// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"codeberg.org/yomu/mangadexkit/core/requests"
)

// maxReadMarkerBody is the largest read marker update the service accepts, in bytes.
const maxReadMarkerBody = 10240

// GetReadMarkers returns the chapters of a manga the user has read.
func (c *Client) GetReadMarkers(ctx context.Context, mangaID uuid.UUID) ([]uuid.UUID, error) {
	var resp struct {
		Data []uuid.UUID `json:"data"`
	}

	if err := c.authGet(ctx, c.endpoints.ReadMarkersURL(mangaID), &resp); err != nil {
		return nil, err
	}

	return resp.Data, nil
}

// GetGroupedReadMarkers returns the read chapters of several manga at once.
func (c *Client) GetGroupedReadMarkers(ctx context.Context, mangaIDs []uuid.UUID) (ReadMarkers, error) {
	if err := checkIDs(mangaIDs); err != nil {
		return nil, err
	}

	var resp struct {
		Data OptionalMap[[]uuid.UUID] `json:"data"`
	}

	if err := c.authGet(ctx, c.endpoints.GroupedReadMarkersURL(mangaIDs), &resp); err != nil {
		return nil, err
	}

	markers := make(ReadMarkers, len(resp.Data))

	for key, chapters := range resp.Data {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, &requests.DecodeError{Body: []byte(key), Err: err}
		}

		markers[id] = chapters
	}

	return markers, nil
}

// UpdateReadMarkers marks chapters of a manga as read or unread.
func (c *Client) UpdateReadMarkers(ctx context.Context, mangaID uuid.UUID, read, unread []uuid.UUID) error {
	update := ReadMarkerUpdate{ChapterIDsRead: read, ChapterIDsUnread: unread}
	if len(read) == 0 && len(unread) == 0 {
		return requests.NewBadRequest("read marker update lists no chapters")
	}

	body, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("encoding read markers: %w", err)
	}

	if len(body) >= maxReadMarkerBody {
		return requests.NewBadRequest("read marker update is %d bytes, the limit is %d", len(body), maxReadMarkerBody)
	}

	readURL := c.endpoints.ReadMarkersURL(mangaID)

	return c.authSend(ctx, http.MethodPost, readURL, body, nil,
		readURL, c.endpoints.API+"/manga/read")
}

// GetReadingStatus returns where a manga sits in the user's library.
// A manga outside the library has ReadingStatusNone.
func (c *Client) GetReadingStatus(ctx context.Context, mangaID uuid.UUID) (ReadingStatus, error) {
	var resp struct {
		Status *ReadingStatus `json:"status"`
	}

	if err := c.authGet(ctx, c.endpoints.ReadingStatusURL(mangaID), &resp); err != nil {
		return ReadingStatusNone, err
	}

	if resp.Status == nil {
		return ReadingStatusNone, nil
	}

	return *resp.Status, nil
}

// GetAllReadingStatuses returns the status of every manga in the user's library.
func (c *Client) GetAllReadingStatuses(ctx context.Context) (map[uuid.UUID]ReadingStatus, error) {
	var resp struct {
		Statuses OptionalMap[ReadingStatus] `json:"statuses"`
	}

	if err := c.authGet(ctx, c.endpoints.AllReadingStatusesURL(), &resp); err != nil {
		return nil, err
	}

	statuses := make(map[uuid.UUID]ReadingStatus, len(resp.Statuses))

	for key, status := range resp.Statuses {
		id, err := uuid.Parse(key)
		if err != nil {
			return nil, &requests.DecodeError{Body: []byte(key), Err: err}
		}

		statuses[id] = status
	}

	return statuses, nil
}

// UpdateReadingStatus moves a manga within the user's library.
// ReadingStatusNone removes it.
func (c *Client) UpdateReadingStatus(ctx context.Context, mangaID uuid.UUID, status ReadingStatus) error {
	if !status.Valid() {
		return requests.NewBadRequest("unknown reading status %q", status)
	}

	payload := struct {
		Status *ReadingStatus `json:"status"`
	}{}

	if status != ReadingStatusNone {
		payload.Status = &status
	}

	statusURL := c.endpoints.ReadingStatusURL(mangaID)

	return c.authSend(ctx, http.MethodPost, statusURL, payload, nil,
		statusURL, c.endpoints.AllReadingStatusesURL())
}

// FollowManga adds a manga to the user's follows.
func (c *Client) FollowManga(ctx context.Context, mangaID uuid.UUID) error {
	return c.authSend(ctx, http.MethodPost, c.endpoints.FollowURL(mangaID), nil, nil,
		c.endpoints.IsFollowingURL(mangaID))
}

// UnfollowManga removes a manga from the user's follows.
func (c *Client) UnfollowManga(ctx context.Context, mangaID uuid.UUID) error {
	return c.authSend(ctx, http.MethodDelete, c.endpoints.FollowURL(mangaID), nil, nil,
		c.endpoints.IsFollowingURL(mangaID))
}

// IsFollowingManga reports whether the user follows a manga.
func (c *Client) IsFollowingManga(ctx context.Context, mangaID uuid.UUID) (bool, error) {
	err := c.authGet(ctx, c.endpoints.IsFollowingURL(mangaID), nil)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, requests.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// GetFollowedFeed returns the latest chapters of the manga the user follows.
func (c *Client) GetFollowedFeed(ctx context.Context, limit, offset int) (List[Chapter], error) {
	if err := checkPage(limit, offset); err != nil {
		return List[Chapter]{}, err
	}

	var resp List[Chapter]
	if err := c.authGet(ctx, c.endpoints.FollowedFeedURL(limit, offset, c.filter), &resp); err != nil {
		return List[Chapter]{}, err
	}

	return resp, nil
}

// GetCustomListFeed returns the chapters of a custom list. Private lists are
// only visible when logged in.
func (c *Client) GetCustomListFeed(ctx context.Context, listID uuid.UUID, limit, offset int) (List[Chapter], error) {
	if err := checkPage(limit, offset); err != nil {
		return List[Chapter]{}, err
	}

	feedURL := c.endpoints.CustomListFeedURL(listID, limit, offset, c.filter)

	var (
		resp List[Chapter]
		err  error
	)

	if c.IsLoggedIn(ctx) {
		err = c.authGet(ctx, feedURL, &resp)
	} else {
		err = c.get(ctx, feedURL, &resp)
	}

	if err != nil {
		return List[Chapter]{}, err
	}

	return resp, nil
}
