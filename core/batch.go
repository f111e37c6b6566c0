// Copyright 2025, the mangadexkit contributors
// SPDX-License-Identifier: AGPL-3.0-only

package core

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// BatchPolicy decides what happens when one chunk of a batch fails.
type BatchPolicy int

const (
	// StopOnError cancels the remaining chunks and returns the first error.
	StopOnError BatchPolicy = iota
	// ContinueOnError fetches every chunk and reports the failed ones in [BatchResult.Failed].
	ContinueOnError
)

// ChunkError is a failed chunk of a batch.
type ChunkError struct {
	Index int
	IDs   []uuid.UUID
	Err   error
}

func (e ChunkError) Error() string {
	return fmt.Sprintf("chunk %d (%d ids): %v", e.Index, len(e.IDs), e.Err)
}

func (e ChunkError) Unwrap() error {
	return e.Err
}

// BatchResult holds the items of every successful chunk, in chunk order.
type BatchResult[T any] struct {
	Items  []T
	Failed []ChunkError
}

// runBatch splits ids into chunks of MaxLimit and fetches them concurrently.
// Each fetch goes through the admission gate, so concurrency is bounded there.
func runBatch[T any](
	ctx context.Context,
	ids []uuid.UUID,
	policy BatchPolicy,
	fetch func(ctx context.Context, chunk []uuid.UUID) ([]T, error),
) (BatchResult[T], error) {
	chunks := slices.Collect(slices.Chunk(ids, MaxLimit))
	results := make([][]T, len(chunks))
	failures := make([]error, len(chunks))

	group, groupCtx := errgroup.WithContext(ctx)

	for i, chunk := range chunks {
		group.Go(func() error {
			items, err := fetch(groupCtx, chunk)
			if err != nil {
				failures[i] = err

				if policy == StopOnError {
					return ChunkError{Index: i, IDs: chunk, Err: err}
				}

				log.Warn().Err(err).Int("chunk", i).Int("ids", len(chunk)).Msg("Batch chunk failed")

				return nil
			}

			results[i] = items

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return BatchResult[T]{}, err
	}

	var result BatchResult[T]

	for i, items := range results {
		if failures[i] != nil {
			result.Failed = append(result.Failed, ChunkError{Index: i, IDs: chunks[i], Err: failures[i]})

			continue
		}

		result.Items = append(result.Items, items...)
	}

	return result, nil
}
