// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"

	"codeberg.org/yomu/mangadexkit/core/audit"
)

// RequestOptions are the parameters of one dispatch.
//
// Payload selects the request body:
//   - nil sends no body
//   - url.Values is sent form-encoded
//   - []byte is sent as is, as JSON
//   - anything else is marshaled to JSON
type RequestOptions struct {
	Method      string
	URL         string
	Destination audit.TrafficDestination // defaults to audit.ToAPI
	Payload     any

	// NoCache skips the response cache for both read and write.
	NoCache bool

	bearer string
}

type requestIDKey struct{}

// WithRequestID attaches a request ID to ctx. Spans of requests made with ctx
// carry IDs derived from it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)

	return id
}
