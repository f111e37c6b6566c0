// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package respcache is a fixed-capacity least-recently-used cache of HTTP responses.

Entries expire after a TTL fixed at construction. When compression is enabled,
bodies are stored zstd-compressed whenever that saves space and are decompressed
transparently on read.
*/
package respcache

import (
	"container/list"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrInvalidSize = errors.New("cache size must be positive")
	ErrInvalidTTL  = errors.New("cache TTL must be positive")
)

// Entry is one cached response.
type Entry struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
	ExpiresAt  time.Time
}

// Cache is safe for concurrent use. Construct with [New].
type Cache struct {
	mu      sync.Mutex
	size    int
	ttl     time.Duration
	order   list.List // of *slot, front is most recently used
	entries map[string]*list.Element

	enc *zstd.Encoder
	dec *zstd.Decoder

	now func() time.Time
}

type slot struct {
	key        string
	entry      Entry
	compressed bool
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns a cache holding at most size entries, each living for ttl.
func New(size int, ttl time.Duration, compress bool, opts ...Option) (*Cache, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	c := &Cache{
		size:    size,
		ttl:     ttl,
		entries: make(map[string]*list.Element, size),
		now:     time.Now,
	}

	if compress {
		// nil writer and reader: only EncodeAll and DecodeAll are used.
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			return nil, err
		}

		dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
		if err != nil {
			return nil, err
		}

		c.enc, c.dec = enc, dec
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Add stores e under key, stamping its expiry, and reports whether an older entry was evicted.
func (c *Cache) Add(key string, e Entry) bool {
	s := &slot{key: key, entry: e}
	s.entry.Header = e.Header.Clone()
	s.entry.Body, s.compressed = c.pack(e.Body)

	c.mu.Lock()
	defer c.mu.Unlock()

	s.entry.ExpiresAt = c.now().Add(c.ttl)

	if elem, ok := c.entries[key]; ok {
		elem.Value = s
		c.order.MoveToFront(elem)

		return false
	}

	c.entries[key] = c.order.PushFront(s)

	if c.order.Len() <= c.size {
		return false
	}

	c.removeLocked(c.order.Back())

	return true
}

// Get returns a fresh entry for key and marks it most recently used.
// Expired entries are dropped.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()

	elem, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()

		return Entry{}, false
	}

	s, _ := elem.Value.(*slot)
	if !c.now().Before(s.entry.ExpiresAt) {
		c.removeLocked(elem)
		c.mu.Unlock()

		return Entry{}, false
	}

	c.order.MoveToFront(elem)
	c.mu.Unlock()

	return c.unpack(s)
}

// Remove deletes key and reports whether it was present.
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if ok {
		c.removeLocked(elem)
	}

	return ok
}

// Invalidate removes every entry whose URL starts with one of prefixes
// and returns the URLs removed.
func (c *Cache) Invalidate(prefixes ...string) []string {
	if len(prefixes) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []string

	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()

		s, _ := elem.Value.(*slot)
		for _, prefix := range prefixes {
			if strings.HasPrefix(s.entry.URL, prefix) {
				removed = append(removed, s.entry.URL)
				c.removeLocked(elem)

				break
			}
		}

		elem = next
	}

	return removed
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

func (c *Cache) removeLocked(elem *list.Element) {
	s, _ := c.order.Remove(elem).(*slot)
	delete(c.entries, s.key)
}

// pack copies body, compressing it when that makes it smaller.
func (c *Cache) pack(body []byte) ([]byte, bool) {
	if len(body) == 0 {
		return nil, false
	}

	if c.enc != nil {
		if packed := c.enc.EncodeAll(body, nil); len(packed) < len(body) {
			return packed, true
		}
	}

	return append([]byte(nil), body...), false
}

// unpack returns a copy of the entry the caller may mutate.
func (c *Cache) unpack(s *slot) (Entry, bool) {
	e := s.entry
	e.Header = e.Header.Clone()

	if !s.compressed {
		e.Body = append([]byte(nil), e.Body...)

		return e, true
	}

	body, err := c.dec.DecodeAll(e.Body, nil)
	if err != nil {
		return Entry{}, false
	}

	e.Body = body

	return e, true
}
