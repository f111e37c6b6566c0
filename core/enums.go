// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import "slices"

// Demographic is the intended audience of a manga.
type Demographic string

const (
	Shounen Demographic = "shounen"
	Shoujo  Demographic = "shoujo"
	Josei   Demographic = "josei"
	Seinen  Demographic = "seinen"
)

// Valid reports whether d is a known demographic.
func (d Demographic) Valid() bool {
	switch d {
	case Shounen, Shoujo, Josei, Seinen:
		return true
	default:
		return false
	}
}

// Status is the publication status of a manga.
type Status string

const (
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusHiatus    Status = "hiatus"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known publication status.
func (s Status) Valid() bool {
	switch s {
	case StatusOngoing, StatusCompleted, StatusHiatus, StatusCancelled:
		return true
	default:
		return false
	}
}

// ReadingStatus is where a manga sits in the user's library.
type ReadingStatus string

const (
	// ReadingStatusNone means the manga is not in the library. It is sent as null.
	ReadingStatusNone ReadingStatus = "none"

	Reading    ReadingStatus = "reading"
	OnHold     ReadingStatus = "on_hold"
	Dropped    ReadingStatus = "dropped"
	PlanToRead ReadingStatus = "plan_to_read"
	Completed  ReadingStatus = "completed"
	ReReading  ReadingStatus = "re_reading"
)

// Valid reports whether s is a known reading status, none included.
func (s ReadingStatus) Valid() bool {
	switch s {
	case ReadingStatusNone, Reading, OnHold, Dropped, PlanToRead, Completed, ReReading:
		return true
	default:
		return false
	}
}

// ContentRating is the maturity rating of a manga.
type ContentRating string

const (
	Safe         ContentRating = "safe"
	Suggestive   ContentRating = "suggestive"
	Erotica      ContentRating = "erotica"
	Pornographic ContentRating = "pornographic"
)

// contentRatings is ordered from least to most explicit.
var contentRatings = []ContentRating{Safe, Suggestive, Erotica, Pornographic}

// Valid reports whether r is a known content rating.
func (r ContentRating) Valid() bool {
	return slices.Contains(contentRatings, r)
}

// Cumulative returns r and every less explicit rating.
// An unknown rating yields only Safe.
func (r ContentRating) Cumulative() []ContentRating {
	i := slices.Index(contentRatings, r)
	if i < 0 {
		return []ContentRating{Safe}
	}

	return slices.Clone(contentRatings[:i+1])
}

// Order is a sort direction.
type Order string

const (
	Ascending  Order = "asc"
	Descending Order = "desc"
)

// TagMode combines several tags of a filter.
type TagMode string

const (
	TagModeAnd TagMode = "AND"
	TagModeOr  TagMode = "OR"
)
