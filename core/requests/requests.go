// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package requests dispatches HTTP requests to the catalog service.

Every network dispatch goes through the shared admission gate, runs in an
audit span and, for GET requests, may be served from or stored in the
response cache. [Requester.Authenticated] adds the bearer token and refreshes
it once when the service answers 401.
*/
package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"codeberg.org/yomu/mangadexkit/core/audit"
	"codeberg.org/yomu/mangadexkit/core/idgen"
	"codeberg.org/yomu/mangadexkit/core/requests/respcache"
	"codeberg.org/yomu/mangadexkit/core/tokenbucket"
	"codeberg.org/yomu/mangadexkit/core/tokenmanager"
	"codeberg.org/yomu/mangadexkit/core/utils"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	defaultUserAgent = "mangadexkit"
	defaultAuthURL   = "https://auth.mangadex.org/realms/mangadex/protocol/openid-connect/token"
)

var errUnsupportedPayloadType = errors.New("unsupported payload type")

// Requester sends requests on behalf of one account. It is safe for concurrent use.
type Requester struct {
	client    *http.Client
	gate      *tokenbucket.Gate
	store     tokenmanager.Store
	cache     *respcache.Cache
	metrics   *audit.Metrics
	userAgent string
	authURL   string

	reauth singleflight.Group
}

// Option configures a Requester.
type Option func(*Requester)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Requester) {
		if c != nil {
			r.client = c
		}
	}
}

// WithCache enables the GET response cache.
func WithCache(c *respcache.Cache) Option {
	return func(r *Requester) { r.cache = c }
}

// WithMetrics records every dispatch and reauthentication in m.
func WithMetrics(m *audit.Metrics) Option {
	return func(r *Requester) { r.metrics = m }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Requester) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithAuthURL sets the OpenID Connect token endpoint.
func WithAuthURL(u string) Option {
	return func(r *Requester) {
		if u != "" {
			r.authURL = u
		}
	}
}

// NewRequester returns a Requester admitting requests through gate and keeping tokens in store.
func NewRequester(gate *tokenbucket.Gate, store tokenmanager.Store, opts ...Option) *Requester {
	r := &Requester{
		client:    utils.NewHTTPClient(utils.DefaultTimeout),
		gate:      gate,
		store:     store,
		userAgent: defaultUserAgent,
		authURL:   defaultAuthURL,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Gate returns the admission gate.
func (r *Requester) Gate() *tokenbucket.Gate {
	return r.gate
}

// Store returns the credential store.
func (r *Requester) Store() tokenmanager.Store {
	return r.store
}

// Do sends one request and returns the response with its body already read.
//
// The status code is not interpreted. GET requests may be answered from the cache
// without touching the network or the gate. Only network dispatches are gated.
func (r *Requester) Do(ctx context.Context, opts RequestOptions) (*http.Response, []byte, error) {
	if opts.Destination == "" {
		opts.Destination = audit.ToAPI
	}

	cacheable := r.cache != nil && opts.Method == http.MethodGet && !opts.NoCache

	var key string

	if cacheable {
		key = cacheKey(opts.URL, opts.bearer)

		if item, ok := r.cache.Get(key); ok {
			span := audit.Span{
				Destination: opts.Destination,
				RequestID:   idgen.Child(requestIDFrom(ctx)),
				Method:      opts.Method,
				URL:         opts.URL,
				StatusCode:  item.StatusCode,
				Body:        item.Body,
				Cached:      true,
			}
			span.Log()

			return &http.Response{
				StatusCode: item.StatusCode,
				Header:     item.Header,
				Body:       io.NopCloser(bytes.NewReader(item.Body)),
			}, item.Body, nil
		}
	}

	var (
		resp *http.Response
		body []byte
	)

	err := r.gate.Do(ctx, func(ctx context.Context) error {
		req, err := r.newRequest(ctx, opts)
		if err != nil {
			return err
		}

		//nolint:bodyclose // sendRequest closes the original body and returns a NopCloser.
		resp, body, err = r.sendRequest(ctx, req, opts.Destination)

		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if cacheable && resp.StatusCode == http.StatusOK {
		r.cache.Add(key, respcache.Entry{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
			Body:       body,
			URL:        opts.URL,
		})
	}

	return resp, body, nil
}

// Fetch sends an unauthenticated request and decodes a success response into out.
// A nil out discards the body.
func (r *Requester) Fetch(ctx context.Context, opts RequestOptions, out any) error {
	resp, body, err := r.Do(ctx, opts)
	if err != nil {
		return err
	}

	return interpret(resp.StatusCode, body, out)
}

// Get is Fetch for a GET request.
func (r *Requester) Get(ctx context.Context, rawURL string, out any) error {
	return r.Fetch(ctx, RequestOptions{Method: http.MethodGet, URL: rawURL}, out)
}

// Post is Fetch for a POST request.
func (r *Requester) Post(ctx context.Context, rawURL string, payload, out any) error {
	return r.Fetch(ctx, RequestOptions{Method: http.MethodPost, URL: rawURL, Payload: payload}, out)
}

// InvalidateURLs drops cached responses whose URL starts with one of prefixes.
// It is safe to call when caching is disabled.
func (r *Requester) InvalidateURLs(prefixes ...string) []string {
	if r.cache == nil {
		return nil
	}

	removed := r.cache.Invalidate(prefixes...)
	if len(removed) > 0 {
		log.Debug().
			Int("count", len(removed)).
			Strs("urls", removed).
			Msg("Invalidated cached responses")
	}

	return removed
}

// interpret maps any status other than 200 to an *APIError and decodes a success body.
func interpret(status int, body []byte, out any) error {
	if status != http.StatusOK {
		return NewAPIError(status, body)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Body: body, Err: err}
	}

	return nil
}

// cacheKey binds a cached response to the URL and the exact bearer token that fetched it.
func cacheKey(rawURL, bearer string) string {
	hasher := fnv.New64a()

	_, _ = hasher.Write([]byte(rawURL + ":" + bearer))

	return strconv.FormatUint(hasher.Sum64(), 16)
}

// newRequest constructs an *http.Request from RequestOptions.
func (r *Requester) newRequest(ctx context.Context, opts RequestOptions) (*http.Request, error) {
	if _, err := url.ParseRequestURI(opts.URL); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	var (
		reqBody     io.Reader
		contentType string
	)

	switch v := opts.Payload.(type) {
	case nil:
	case url.Values:
		reqBody = bytes.NewBufferString(v.Encode())
		contentType = contentTypeForm
	case []byte:
		reqBody = bytes.NewReader(v)
		contentType = contentTypeJSON
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w %T: %w", errUnsupportedPayloadType, v, err)
		}

		reqBody = bytes.NewReader(encoded)
		contentType = contentTypeJSON
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, opts.URL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentTypeJSON)
	req.Header.Set("User-Agent", r.userAgent)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if opts.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+opts.bearer)
	}

	return req, nil
}

// sendRequest executes the HTTP request and reads the body for auditing. It returns
// the response with a fresh, readable body along with the raw body bytes.
func (r *Requester) sendRequest(
	ctx context.Context,
	req *http.Request,
	destination audit.TrafficDestination,
) (_ *http.Response, _ []byte, err error) {
	span := audit.Span{
		Destination: destination,
		RequestID:   idgen.Child(requestIDFrom(ctx)),
		Method:      req.Method,
		URL:         req.URL.String(),
	}

	_ = span.Begin(ctx)

	defer func() {
		span.Error = err
		span.End()
		span.Log()
		r.metrics.ObserveSpan(&span)
	}()

	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && isContextCanceled(err) {
			return nil, nil, ctxErr
		}

		return nil, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.Body = body

	resp.Body = io.NopCloser(bytes.NewReader(body))

	return resp, body, nil
}

// isContextCanceled reports whether err comes from a cancelled or expired context.
func isContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
