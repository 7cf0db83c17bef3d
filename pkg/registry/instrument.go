package registry

import (
	"context"
	"time"

	"github.com/PersonalPrivateProjects/First-Project-HashesSignature/pkg/digest"
	"github.com/rs/zerolog"
)

// CallObserver receives the latency and outcome of each registry call.
type CallObserver interface {
	ObserveRegistryCall(op string, elapsed time.Duration, err error)
}

// Instrumented decorates a Registry with call logging and observation.
type Instrumented struct {
	inner    Registry
	observer CallObserver
	logger   zerolog.Logger
}

// Instrument wraps reg. A nil observer or logger disables that output.
func Instrument(reg Registry, observer CallObserver, logger *zerolog.Logger) *Instrumented {
	instrumented := &Instrumented{inner: reg, observer: observer, logger: zerolog.Nop()}
	if logger != nil {
		instrumented.logger = *logger
	}
	return instrumented
}

// Unwrap returns the decorated registry.
func (r *Instrumented) Unwrap() Registry {
	return r.inner
}

func (r *Instrumented) observe(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	if r.observer != nil {
		r.observer.ObserveRegistryCall(op, elapsed, err)
	}
	event := r.logger.Debug()
	if err != nil {
		event = r.logger.Warn().Err(err)
	}
	event.Str("op", op).Dur("elapsed", elapsed).Msg("registry call")
}

func (r *Instrumented) Count(ctx context.Context) (uint64, error) {
	start := time.Now()
	count, err := r.inner.Count(ctx)
	r.observe("count", start, err)
	return count, err
}

func (r *Instrumented) DigestAt(ctx context.Context, index uint64) (digest.Digest, error) {
	start := time.Now()
	d, err := r.inner.DigestAt(ctx, index)
	r.observe("digest_at", start, err)
	return d, err
}

func (r *Instrumented) Lookup(ctx context.Context, d digest.Digest) (Record, error) {
	start := time.Now()
	record, err := r.inner.Lookup(ctx, d)
	r.observe("lookup", start, err)
	return record, err
}

func (r *Instrumented) Exists(ctx context.Context, d digest.Digest) (bool, error) {
	start := time.Now()
	exists, err := r.inner.Exists(ctx, d)
	r.observe("exists", start, err)
	return exists, err
}

func (r *Instrumented) Append(ctx context.Context, record Record) (Receipt, error) {
	start := time.Now()
	receipt, err := r.inner.Append(ctx, record)
	r.observe("append", start, err)
	return receipt, err
}

// Records delegates to the wrapped registry when it supports range reads and
// returns ErrRangeUnsupported otherwise.
func (r *Instrumented) Records(ctx context.Context, offset uint64, limit uint64) ([]Record, error) {
	ranged, ok := r.inner.(RangeReader)
	if !ok {
		return nil, ErrRangeUnsupported
	}
	start := time.Now()
	records, err := ranged.Records(ctx, offset, limit)
	r.observe("records", start, err)
	return records, err
}
