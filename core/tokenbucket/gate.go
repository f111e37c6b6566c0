// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package tokenbucket provides the admission gate shared by every outbound request.

A [Gate] bounds the number of requests in flight to a fixed capacity and paces
admissions so that aggregate throughput stays under a fixed ceiling regardless
of capacity. Callers that find the gate exhausted queue in strict arrival order;
a release hands the token directly to the head of the queue.
*/
package tokenbucket

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultMinDelay is the minimum spacing between two admissions.
const DefaultMinDelay = 200 * time.Millisecond

var (
	errInvalidCapacity = errors.New("gate capacity must be positive")
	errOverRelease     = errors.New("gate released more tokens than were acquired")
)

// Gate is a FIFO token bucket. The zero value is not usable; construct with [New].
type Gate struct {
	mu        sync.Mutex
	capacity  int
	available int
	waiters   list.List // of *waiter, head is the oldest

	pacer *rate.Limiter
}

// waiter is a suspended Acquire. ready is closed by the releaser that hands it a token.
type waiter struct {
	ready chan struct{}
}

// Option configures a Gate.
type Option func(*Gate)

// WithMinDelay sets the minimum delay between two admissions.
// A non-positive delay disables pacing.
func WithMinDelay(d time.Duration) Option {
	return func(g *Gate) {
		if d <= 0 {
			g.pacer = rate.NewLimiter(rate.Inf, 1)

			return
		}

		g.pacer = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithPacer replaces the pacing limiter.
func WithPacer(l *rate.Limiter) Option {
	return func(g *Gate) {
		if l != nil {
			g.pacer = l
		}
	}
}

// New returns a gate holding capacity tokens.
//
// It panics if capacity is not positive.
func New(capacity int, opts ...Option) *Gate {
	if capacity <= 0 {
		panic(fmt.Sprintf("tokenbucket: %v (got %d)", errInvalidCapacity, capacity))
	}

	g := &Gate{
		capacity:  capacity,
		available: capacity,
		pacer:     rate.NewLimiter(rate.Every(DefaultMinDelay), 1),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Acquire takes a token, blocking in FIFO order until one is handed over or ctx is done.
//
// A caller whose ctx ends while queued leaves the queue without disturbing the order
// of the others and without consuming a token.
func (g *Gate) Acquire(ctx context.Context) error {
	g.mu.Lock()

	if g.available > 0 {
		g.available--
		g.mu.Unlock()

		return nil
	}

	w := &waiter{ready: make(chan struct{})}
	elem := g.waiters.PushBack(w)

	g.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		defer g.mu.Unlock()

		select {
		case <-w.ready:
			// A releaser handed us the token while we were giving up. Pass it on.
			g.releaseLocked()
		default:
			g.waiters.Remove(elem)
		}

		return ctx.Err()
	}
}

// Release returns a token. If callers are queued, the head of the queue receives it directly.
//
// Releasing more tokens than were acquired is a programming error and panics.
func (g *Gate) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.releaseLocked()
}

func (g *Gate) releaseLocked() {
	if front := g.waiters.Front(); front != nil {
		w, _ := g.waiters.Remove(front).(*waiter)
		close(w.ready)

		return
	}

	if g.available >= g.capacity {
		panic("tokenbucket: " + errOverRelease.Error())
	}

	g.available++
}

// Do paces, acquires a token, runs body and releases the token on every exit path.
//
// Errors returned by body are returned unchanged. If ctx ends before admission,
// body is not run and the context error is returned.
func (g *Gate) Do(ctx context.Context, body func(ctx context.Context) error) error {
	if err := g.pace(ctx); err != nil {
		return err
	}

	if err := g.Acquire(ctx); err != nil {
		return err
	}
	defer g.Release()

	return body(ctx)
}

// DoValue is [Gate.Do] for bodies that produce a value.
func DoValue[T any](ctx context.Context, g *Gate, body func(ctx context.Context) (T, error)) (T, error) {
	var result T

	err := g.Do(ctx, func(ctx context.Context) error {
		var err error

		result, err = body(ctx)

		return err
	})

	return result, err
}

func (g *Gate) pace(ctx context.Context) error {
	if err := g.pacer.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		return fmt.Errorf("waiting for admission: %w", err)
	}

	return nil
}

// Capacity returns the fixed number of tokens.
func (g *Gate) Capacity() int {
	return g.capacity
}

// Available returns the number of tokens not currently held.
func (g *Gate) Available() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.available
}

// Waiting returns the number of queued callers.
func (g *Gate) Waiting() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.waiters.Len()
}
