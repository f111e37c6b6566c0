// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"encoding/json"
	"errors"

	"codeberg.org/yomu/mangadexkit/core/requests"
)

// Response is the common part of every success body.
type Response struct {
	Result string `json:"result"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Result string        `json:"result"`
	Errors []ErrorDetail `json:"errors"`
}

// ErrorDetail is one entry of an ErrorResponse.
type ErrorDetail struct {
	ID      string `json:"id"`
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Context any    `json:"context"`
}

// ParseErrorResponse extracts the service's error envelope from err.
// It reports false when err carries no parsable envelope.
func ParseErrorResponse(err error) (ErrorResponse, bool) {
	var apiErr *requests.APIError
	if !errors.As(err, &apiErr) {
		return ErrorResponse{}, false
	}

	var resp ErrorResponse
	if json.Unmarshal([]byte(apiErr.Context), &resp) != nil || len(resp.Errors) == 0 {
		return ErrorResponse{}, false
	}

	return resp, true
}

// List is one page of a collection.
type List[T any] struct {
	Data   []T `json:"data"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// entity wraps a single object.
type entity[T any] struct {
	Data T `json:"data"`
}
