// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package respcache

import (
	"bytes"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func entry(url, body string) Entry {
	return Entry{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       []byte(body),
		URL:        url,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := New(0, time.Minute, false)
	require.ErrorIs(t, err, ErrInvalidSize)

	_, err = New(1, 0, false)
	require.ErrorIs(t, err, ErrInvalidTTL)

	c, err := New(1, time.Minute, true)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestEviction(t *testing.T) {
	t.Parallel()

	c, err := New(2, time.Minute, false)
	require.NoError(t, err)

	assert.False(t, c.Add("a", entry("/a", "1")))
	assert.False(t, c.Add("b", entry("/b", "2")))

	// Touch a so that b becomes the oldest.
	_, ok := c.Get("a")
	require.True(t, ok)

	assert.True(t, c.Add("c", entry("/c", "3")))

	_, ok = c.Get("b")
	assert.False(t, ok)

	_, ok = c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, c.Len())
}

func TestReplaceKeepsSize(t *testing.T) {
	t.Parallel()

	c, err := New(2, time.Minute, false)
	require.NoError(t, err)

	c.Add("a", entry("/a", "old"))
	assert.False(t, c.Add("a", entry("/a", "new")))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "new", string(got.Body))
	assert.Equal(t, 1, c.Len())
}

func TestExpiry(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}

	c, err := New(4, time.Minute, false, WithClock(clk.Now))
	require.NoError(t, err)

	c.Add("a", entry("/a", "1"))

	clk.Advance(59 * time.Second)

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, clk.now.Add(time.Second), got.ExpiresAt)

	clk.Advance(time.Second)

	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestCompression(t *testing.T) {
	t.Parallel()

	for _, compress := range []bool{false, true} {
		t.Run(strconv.FormatBool(compress), func(t *testing.T) {
			t.Parallel()

			c, err := New(4, time.Minute, compress)
			require.NoError(t, err)

			body := bytes.Repeat([]byte(`{"result":"ok","data":[]}`), 200)
			c.Add("big", entry("/big", string(body)))
			c.Add("tiny", entry("/tiny", "{}"))
			c.Add("empty", entry("/empty", ""))

			got, ok := c.Get("big")
			require.True(t, ok)
			assert.Equal(t, body, got.Body)

			got, ok = c.Get("tiny")
			require.True(t, ok)
			assert.Equal(t, "{}", string(got.Body))

			got, ok = c.Get("empty")
			require.True(t, ok)
			assert.Empty(t, got.Body)
		})
	}
}

func TestEntriesAreCopies(t *testing.T) {
	t.Parallel()

	c, err := New(1, time.Minute, false)
	require.NoError(t, err)

	e := entry("/a", "abc")
	c.Add("a", e)
	e.Body[0] = 'x'
	e.Header.Set("Content-Type", "text/plain")

	got, _ := c.Get("a")
	got.Body[1] = 'y'

	again, _ := c.Get("a")
	assert.Equal(t, "abc", string(again.Body))
	assert.Equal(t, "application/json", again.Header.Get("Content-Type"))
}

func TestInvalidate(t *testing.T) {
	t.Parallel()

	c, err := New(8, time.Minute, false)
	require.NoError(t, err)

	c.Add("1", entry("https://api.test/manga/1/status", ""))
	c.Add("2", entry("https://api.test/manga/status", ""))
	c.Add("3", entry("https://api.test/manga/1/read", ""))
	c.Add("4", entry("https://api.test/chapter/9", ""))

	removed := c.Invalidate("https://api.test/manga/1/", "https://api.test/manga/status")
	assert.ElementsMatch(t, []string{
		"https://api.test/manga/1/status",
		"https://api.test/manga/status",
		"https://api.test/manga/1/read",
	}, removed)
	assert.Equal(t, 1, c.Len())
	assert.Nil(t, c.Invalidate())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	c, err := New(4, time.Minute, true)
	require.NoError(t, err)

	c.Add("a", entry("https://api.test/a", "one"))
	c.Add("b", entry("https://api.test/b", "two"))

	assert.True(t, c.Remove("a"))
	assert.False(t, c.Remove("a"), "already gone")
	assert.False(t, c.Remove("missing"))

	_, ok := c.Get("a")
	assert.False(t, ok)

	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, "two", string(got.Body))
	assert.Equal(t, 1, c.Len())

	// The freed slot is reusable without evicting b.
	c.Add("c", entry("https://api.test/c", "three"))
	assert.Equal(t, 2, c.Len())
	assert.Empty(t, c.Invalidate("https://api.test/a"))
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	c, err := New(16, time.Minute, true)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for i := range 32 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			key := strconv.Itoa(i % 20)
			c.Add(key, entry("/"+key, key))
			c.Get(key)
			c.Invalidate("/1")
		}()
	}

	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 16)
}
