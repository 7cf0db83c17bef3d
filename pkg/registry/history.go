package registry

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// ListOptions selects a window of the registry's history. A zero Limit means
// every record from Offset up to the count observed when the walk starts.
type ListOptions struct {
	Offset  uint64
	Limit   uint64
	Limiter *rate.Limiter
}

// List enumerates the registry in append order. The count is read once, so
// records appended during the walk are not included. A position that
// disappears mid-walk ends the walk without error. Cancellation discards the
// partial result.
func List(ctx context.Context, reg Registry, options ListOptions) ([]Entry, error) {
	if reg == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if err := wait(ctx, options.Limiter); err != nil {
		return nil, err
	}
	total, err := reg.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry count: %w", err)
	}
	if options.Offset >= total {
		return []Entry{}, nil
	}
	end := total
	if options.Limit > 0 && options.Limit < total-options.Offset {
		end = options.Offset + options.Limit
	}

	if ranged, ok := reg.(RangeReader); ok {
		entries, err := listRange(ctx, ranged, options, end)
		if !errors.Is(err, ErrRangeUnsupported) {
			return entries, err
		}
	}

	entries := make([]Entry, 0, end-options.Offset)
	for index := options.Offset; index < end; index++ {
		if err := wait(ctx, options.Limiter); err != nil {
			return nil, err
		}
		d, err := reg.DigestAt(ctx, index)
		if errors.Is(err, ErrIndexOutOfRange) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read digest %d: %w", index, err)
		}

		if err := wait(ctx, options.Limiter); err != nil {
			return nil, err
		}
		record, err := reg.Lookup(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("failed to read record %d (%s): %w", index, d.Hex(), err)
		}
		entries = append(entries, Entry{Index: index, Record: record})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func listRange(ctx context.Context, reader RangeReader, options ListOptions, end uint64) ([]Entry, error) {
	if err := wait(ctx, options.Limiter); err != nil {
		return nil, err
	}
	records, err := reader.Records(ctx, options.Offset, end-options.Offset)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for i, record := range records {
		entries = append(entries, Entry{Index: options.Offset + uint64(i), Record: record})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return ctx.Err()
	}
	return limiter.Wait(ctx)
}
