// Package pipeline drives a batch run: it reads movie metadata inputs,
// admits rows, fans movies out per production company and folds the
// resulting details into a bucket index.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/eunmann/movie-buckets/internal/logctx"
	"github.com/eunmann/movie-buckets/pkg/buckets"
	"github.com/eunmann/movie-buckets/pkg/companies"
	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/eunmann/movie-buckets/pkg/source"
)

// ctxCheckInterval is how many rows Consume reads between context checks.
const ctxCheckInterval = 4096

// Stats counts what happened to the rows of a run.
type Stats struct {
	Inputs         int                        `json:"inputs"`
	RowsRead       int64                      `json:"rows_read"`
	DecodeFailures int64                      `json:"decode_failures"`
	Rejected       map[movies.Rejection]int64 `json:"-"`
	Admitted       int64                      `json:"admitted"`
	Details        int64                      `json:"details"`
}

// RejectedTotal sums rejections over all reasons.
func (s Stats) RejectedTotal() int64 {
	var n int64
	for _, v := range s.Rejected {
		n += v
	}
	return n
}

// Result is the output of a batch run.
type Result struct {
	// Statuses holds the distinct statuses of every decoded row, before
	// admission, in ascending order.
	Statuses []movies.Status
	Index    *buckets.Index[*companies.Detail]
	Stats    Stats
}

// Batch accumulates a single run. The bucket index it owns is only mutated
// through AddMovie.
type Batch struct {
	cutoff   *time.Time
	index    *buckets.Index[*companies.Detail]
	statuses map[movies.Status]struct{}
	stats    Stats

	// collected holds admitted movies of a collecting batch, in row order.
	// A collecting batch has no index.
	collected []movies.Movie
}

// NewBatch starts an empty run. A nil cutoff admits every release date.
func NewBatch(cutoff *time.Time) *Batch {
	return &Batch{
		cutoff:   cutoff,
		index:    buckets.New[*companies.Detail](),
		statuses: make(map[movies.Status]struct{}),
		stats:    Stats{Rejected: make(map[movies.Rejection]int64)},
	}
}

// newCollector returns a batch that decodes and admits rows but keeps the
// admitted movies instead of indexing them. Collectors let inputs be decoded
// concurrently while the index is still built in input order by Fold.
func newCollector(cutoff *time.Time) *Batch {
	return &Batch{
		cutoff:   cutoff,
		statuses: make(map[movies.Status]struct{}),
		stats:    Stats{Rejected: make(map[movies.Rejection]int64)},
	}
}

// AddRow decodes and admits one row. A decode failure is returned as a
// *movies.DecodeError and the row is counted as failed. A rejected row is
// not an error.
func (b *Batch) AddRow(row movies.Row) error {
	b.stats.RowsRead++

	raw, err := movies.DecodeRaw(row)
	if err != nil {
		b.stats.DecodeFailures++
		return err
	}
	b.statuses[movies.ParseStatus(raw.Status)] = struct{}{}

	movie, rej := movies.Admit(raw, b.cutoff)
	if rej != movies.RejectNone {
		b.stats.Rejected[rej]++
		return nil
	}
	b.AddMovie(movie)
	return nil
}

// AddMovie fans an admitted movie out and upserts every detail.
func (b *Batch) AddMovie(m movies.Movie) {
	b.stats.Admitted++
	if b.index == nil {
		b.collected = append(b.collected, m)
		return
	}
	for _, d := range companies.FromMovie(m) {
		b.index.Upsert(d)
		b.stats.Details++
	}
}

// Consume reads r to the end. Row-level failures are logged and skipped;
// any other read error stops the run.
func (b *Batch) Consume(ctx context.Context, r source.Reader) error {
	log := logctx.FromContext(ctx)

	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		row, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}

		var de *movies.DecodeError
		if err != nil {
			if errors.As(err, &de) {
				b.stats.RowsRead++
				b.stats.DecodeFailures++
				log.Debug().Err(err).Int("line", de.Line).Msg("skipping malformed row")
				continue
			}
			return fmt.Errorf("read row: %w", err)
		}

		if err := b.AddRow(row); err != nil {
			if errors.As(err, &de) {
				log.Debug().Str("field", de.Field).Err(err).Msg("skipping undecodable row")
				continue
			}
			return err
		}
	}
}

// Fold adds the rows counted by collector c to b and indexes c's admitted
// movies in the order they were read.
func (b *Batch) Fold(c *Batch) {
	b.stats.RowsRead += c.stats.RowsRead
	b.stats.DecodeFailures += c.stats.DecodeFailures
	for reason, n := range c.stats.Rejected {
		b.stats.Rejected[reason] += n
	}
	for st := range c.statuses {
		b.statuses[st] = struct{}{}
	}
	for _, m := range c.collected {
		b.AddMovie(m)
	}
}

// Result returns the accumulated state. The batch must not be used after.
func (b *Batch) Result() *Result {
	return &Result{
		Statuses: slices.Sorted(maps.Keys(b.statuses)),
		Index:    b.index,
		Stats:    b.stats,
	}
}
