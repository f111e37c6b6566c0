// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package core makes requests to the MangaDex API and parses the answers into structured data.

You may use this package independently as follows:

	package main

	import (
		"context"
		"fmt"

		"github.com/google/uuid"

		"codeberg.org/yomu/mangadexkit/config"
		"codeberg.org/yomu/mangadexkit/core"
	)

	func main() {
		cfg := config.Default()
		cfg.Filters.ContentRating = []string{"safe", "suggestive"}

		client, err := core.NewClient(cfg)
		if err != nil {
			panic(err)
		}

		ctx := context.Background()

		manga, err := client.GetManga(ctx, uuid.MustParse("a96676e5-8ae2-425e-b549-7f15dd34a6d8"))
		if err != nil {
			panic(err)
		}

		fmt.Println(core.Preferred(manga.Title, "en"))
	}

Every request of a client, and of every client sharing its gate through
[WithGate], passes through one admission gate. Methods that act on the user's
library need [Client.Login] first; an expired access token is refreshed once
and the request retried.
*/
package core
