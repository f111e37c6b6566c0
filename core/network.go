// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"net/http"
	"strings"
	"time"

	"codeberg.org/yomu/mangadexkit/core/audit"
	"codeberg.org/yomu/mangadexkit/core/requests"
)

// PageReport describes the download of one page image from an at-home server.
type PageReport struct {
	URL      string
	Success  bool
	Bytes    int
	Duration time.Duration
	Cached   bool // the X-Cache response header started with HIT
}

// CachedByServer reports whether an X-Cache header value marks a server-side hit.
func CachedByServer(xCache string) bool {
	return strings.HasPrefix(xCache, "HIT")
}

// ReportAtHome tells the network how a page download went. Reports for the
// service's own upload host are pointless and the caller should skip them.
func (c *Client) ReportAtHome(ctx context.Context, report PageReport) error {
	payload := struct {
		URL      string `json:"url"`
		Success  bool   `json:"success"`
		Bytes    int    `json:"bytes"`
		Duration int64  `json:"duration"`
		Cached   bool   `json:"cached"`
	}{
		URL:      report.URL,
		Success:  report.Success,
		Bytes:    report.Bytes,
		Duration: report.Duration.Milliseconds(),
		Cached:   report.Cached,
	}

	return c.requester.Fetch(ctx, requests.RequestOptions{
		Method:      http.MethodPost,
		URL:         c.endpoints.ReportURL(),
		Destination: audit.ToNetwork,
		Payload:     payload,
		NoCache:     true,
	}, nil)
}
