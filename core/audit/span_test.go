// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerTimingName(t *testing.T) {
	t.Parallel()

	span := Span{Destination: ToAPI, Method: "GET", URL: "https://api.mangadex.org/manga?limit=1"}
	name := span.ServerTimingName()

	parts := strings.Split(name, "$")
	assert.Len(t, parts, 3)
	assert.Equal(t, "api", parts[0])
	assert.Equal(t, "GET", parts[1])

	decoded, err := base64.RawURLEncoding.DecodeString(parts[2])
	assert.NoError(t, err)
	assert.Equal(t, span.URL, string(decoded))
}

func TestSpanEndIsIdempotent(t *testing.T) {
	t.Parallel()

	span := Span{Destination: ToAPI, Method: "GET"}
	span.Begin(t.Context())
	span.End()

	first := span.Duration()
	span.End()

	assert.Equal(t, first, span.Duration())
}

func TestSpanRecordsServerTiming(t *testing.T) {
	t.Parallel()

	header := &servertiming.Header{}
	ctx := servertiming.NewContext(t.Context(), header)

	span := Span{Destination: ToNetwork, Method: "POST", URL: "https://api.test/report"}
	span.Begin(ctx)

	require.Len(t, header.Metrics, 1)
	metric := header.Metrics[0]
	assert.Equal(t, span.ServerTimingName(), metric.Name)
	assert.Contains(t, metric.Extra, "start")
	assert.Zero(t, metric.Duration)

	time.Sleep(time.Millisecond)
	span.End()

	assert.Positive(t, metric.Duration)
	assert.Equal(t, span.Duration(), metric.Duration)
}

func TestSpanWithoutServerTiming(t *testing.T) {
	t.Parallel()

	span := Span{Destination: ToAuth, Method: "POST"}
	span.Begin(t.Context())
	span.End()

	assert.Nil(t, span.metric)
	assert.Nil(t, span.task)
}

func TestHumanizeSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{1023, "1023"},
		{1024, "1.00K"},
		{1536, "1.50K"},
		{bytesInMB, "1.00M"},
		{bytesInGB * 2, "2.00G"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, humanizeSize(tt.in))
	}
}
