// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"codeberg.org/yomu/mangadexkit/config"
	"codeberg.org/yomu/mangadexkit/core/audit"
	"codeberg.org/yomu/mangadexkit/core/requests"
	"codeberg.org/yomu/mangadexkit/core/requests/respcache"
	"codeberg.org/yomu/mangadexkit/core/tokenbucket"
	"codeberg.org/yomu/mangadexkit/core/tokenmanager"
	"codeberg.org/yomu/mangadexkit/core/utils"
)

var (
	errUnknownBackend  = errors.New("unknown credential backend")
	errInvalidCapacity = errors.New("gate capacity must be at least 1")
)

// Client talks to the catalog service on behalf of one account.
// It is safe for concurrent use.
type Client struct {
	endpoints Endpoints
	filter    config.ContentFilter
	requester *requests.Requester
}

type clientOptions struct {
	store      tokenmanager.Store
	httpClient *http.Client
	registerer prometheus.Registerer
	gate       *tokenbucket.Gate
}

// Option configures a Client.
type Option func(*clientOptions)

// WithStore keeps credentials in s instead of the configured backend.
func WithStore(s tokenmanager.Store) Option {
	return func(o *clientOptions) { o.store = s }
}

// WithHTTPClient replaces the default HTTP client. The configured timeout is not applied to c.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithMetrics registers request metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *clientOptions) { o.registerer = reg }
}

// WithGate shares an admission gate between clients. Requests of every client
// holding g count against the same limit.
func WithGate(g *tokenbucket.Gate) Option {
	return func(o *clientOptions) { o.gate = g }
}

// NewClient returns a client for cfg. A nil cfg uses [config.Default].
func NewClient(cfg *config.ClientConfig, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	endpoints, err := NewEndpoints(cfg)
	if err != nil {
		return nil, err
	}

	if o.gate == nil {
		if cfg.Gate.Capacity < 1 {
			return nil, fmt.Errorf("%w (got %d)", errInvalidCapacity, cfg.Gate.Capacity)
		}

		o.gate = tokenbucket.New(cfg.Gate.Capacity, tokenbucket.WithMinDelay(cfg.Gate.MinDelay))
	}

	if o.store == nil {
		o.store, err = newStore(cfg)
		if err != nil {
			return nil, err
		}
	}

	if o.httpClient == nil {
		o.httpClient = utils.NewHTTPClient(cfg.API.Timeout)
	}

	reqOpts := []requests.Option{
		requests.WithHTTPClient(o.httpClient),
		requests.WithUserAgent(cfg.API.UserAgent),
		requests.WithAuthURL(cfg.API.AuthURL),
	}

	if cfg.Cache.Enabled {
		cache, err := respcache.New(cfg.Cache.Size, cfg.Cache.TTL, cfg.Cache.Compress)
		if err != nil {
			return nil, fmt.Errorf("creating response cache: %w", err)
		}

		reqOpts = append(reqOpts, requests.WithCache(cache))
	}

	if o.registerer != nil {
		metrics, err := audit.NewMetrics(o.registerer, o.gate)
		if err != nil {
			return nil, err
		}

		reqOpts = append(reqOpts, requests.WithMetrics(metrics))
	}

	log.Debug().
		Str("api", endpoints.API).
		Int("capacity", o.gate.Capacity()).
		Bool("cache", cfg.Cache.Enabled).
		Msg("Created client")

	return &Client{
		endpoints: endpoints,
		filter:    cfg.Filters,
		requester: requests.NewRequester(o.gate, o.store, reqOpts...),
	}, nil
}

func newStore(cfg *config.ClientConfig) (tokenmanager.Store, error) {
	creds := cfg.Credentials

	switch creds.Backend {
	case config.MemoryBackend, "":
		return tokenmanager.NewMemoryStore(), nil
	case config.FileBackend:
		store, err := tokenmanager.NewFileStore(creds.FilePath, creds.Secret)
		if err != nil {
			return nil, fmt.Errorf("opening credential file: %w", err)
		}

		return store, nil
	case config.RedisBackend:
		rdb := tokenmanager.NewRedisClient(creds.RedisAddr, creds.RedisPassword, creds.RedisDB)

		return tokenmanager.NewRedisStore(rdb,
			tokenmanager.WithRedisPrefix(creds.RedisPrefix),
			tokenmanager.WithRedisTTL(creds.RedisTTL),
		), nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownBackend, creds.Backend)
	}
}

// Endpoints returns the base URLs the client builds requests against.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Filter returns the content filter applied to list and feed requests.
func (c *Client) Filter() config.ContentFilter {
	return c.filter
}

// WithFilter returns a client sharing c's gate, credentials and cache that
// applies f instead.
func (c *Client) WithFilter(f config.ContentFilter) *Client {
	clone := *c
	clone.filter = f

	return &clone
}

// Gate returns the admission gate of the client.
func (c *Client) Gate() *tokenbucket.Gate {
	return c.requester.Gate()
}

// Login exchanges creds for a token pair and stores both.
func (c *Client) Login(ctx context.Context, creds Credentials) error {
	return c.requester.Login(ctx, creds)
}

// Reauthenticate refreshes the access token with the stored refresh token.
func (c *Client) Reauthenticate(ctx context.Context) error {
	return c.requester.Reauthenticate(ctx)
}

// Logout removes the stored credentials and clears the response cache.
func (c *Client) Logout(ctx context.Context) error {
	return c.requester.Logout(ctx)
}

// IsLoggedIn reports whether an access token is stored.
func (c *Client) IsLoggedIn(ctx context.Context) bool {
	token, err := c.requester.Store().GetAccessToken(ctx)

	return err == nil && token != ""
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	return c.requester.Get(ctx, rawURL, out)
}

func (c *Client) authGet(ctx context.Context, rawURL string, out any) error {
	return c.requester.Authenticated(ctx, requests.RequestOptions{Method: http.MethodGet, URL: rawURL}, out)
}

// authSend sends a write and drops cached reads under the invalidated prefixes.
func (c *Client) authSend(ctx context.Context, method, rawURL string, payload, out any, invalidate ...string) error {
	err := c.requester.Authenticated(ctx, requests.RequestOptions{
		Method:  method,
		URL:     rawURL,
		Payload: payload,
		NoCache: true,
	}, out)
	if err != nil {
		return err
	}

	c.requester.InvalidateURLs(invalidate...)

	return nil
}

func checkPage(limit, offset int) error {
	if limit < 1 || limit > MaxLimit {
		return requests.NewBadRequest("limit must be between 1 and %d, got %d", MaxLimit, limit)
	}

	if offset < 0 {
		return requests.NewBadRequest("offset must not be negative, got %d", offset)
	}

	return nil
}

func checkIDs[T any](ids []T) error {
	if len(ids) == 0 || len(ids) > MaxLimit {
		return requests.NewBadRequest("between 1 and %d ids are required, got %d", MaxLimit, len(ids))
	}

	return nil
}
