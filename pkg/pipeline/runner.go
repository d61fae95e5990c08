package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eunmann/movie-buckets/internal/logctx"
	"github.com/eunmann/movie-buckets/pkg/logging"
	"github.com/eunmann/movie-buckets/pkg/memdiag"
	"github.com/eunmann/movie-buckets/pkg/source"
)

// Config configures a run.
type Config struct {
	// Cutoff, when set, excludes movies released after it.
	Cutoff *time.Time

	// Workers is how many inputs are decoded at once. With more than one
	// worker, admitted movies of every input are held in memory until the
	// input's turn to be indexed comes. Values below 2 read inputs one by one.
	Workers int
}

// Runner ingests a list of inputs into a single batch. The index is always
// built in input order, so results do not depend on Workers.
type Runner struct {
	opener *source.Opener
	cfg    Config
	mem    memdiag.Tracker
}

// NewRunner creates a runner that opens inputs with opener.
func NewRunner(opener *source.Opener, cfg Config) *Runner {
	return &Runner{opener: opener, cfg: cfg}
}

// Run ingests every input and returns the accumulated result. Failing to
// open or read an input aborts the run.
func (r *Runner) Run(ctx context.Context, inputs []string) (*Result, error) {
	start := time.Now()
	log := logctx.FromContext(ctx).With().Str("phase", "ingest").Logger()
	ctx = logctx.WithLogger(ctx, log)

	ev := log.Info().Int("inputs", len(inputs)).Int("workers", max(r.cfg.Workers, 1))
	if r.cfg.Cutoff != nil {
		ev = ev.Str("cutoff", r.cfg.Cutoff.Format("2006-01-02"))
	}
	ev.Msg("starting ingest")

	batch := NewBatch(r.cfg.Cutoff)
	tracker := logging.NewProgressTracker("ingest", int64(len(inputs)), log)

	var err error
	if r.cfg.Workers > 1 && len(inputs) > 1 {
		err = r.ingestConcurrently(ctx, batch, inputs, tracker)
	} else {
		for i, uri := range inputs {
			if err = r.ingest(inputContext(ctx, uri, i), batch, uri, tracker); err != nil {
				err = fmt.Errorf("ingest %s: %w", uri, err)
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}
	batch.stats.Inputs = len(inputs)

	res := batch.Result()
	logging.PhaseComplete(log, "ingest", time.Since(start)).
		Count("rows_read", res.Stats.RowsRead).
		Count("decode_failures", res.Stats.DecodeFailures).
		Count("rejected", res.Stats.RejectedTotal()).
		Count("admitted", res.Stats.Admitted).
		Count("details", res.Stats.Details).
		Int("bucket_records", res.Index.Len()).
		Log("ingest complete")

	return res, nil
}

func inputContext(ctx context.Context, uri string, i int) context.Context {
	return logctx.WithInt(logctx.WithStr(ctx, "input", uri), "input_index", i)
}

// ingestConcurrently decodes inputs on up to Workers goroutines, then folds
// the collected movies into batch in input order.
func (r *Runner) ingestConcurrently(ctx context.Context, batch *Batch, inputs []string, tracker *logging.ProgressTracker) error {
	collectors := make([]*Batch, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	for i, uri := range inputs {
		g.Go(func() error {
			c := newCollector(r.cfg.Cutoff)
			if err := r.ingest(inputContext(ctx, uri, i), c, uri, tracker); err != nil {
				return fmt.Errorf("ingest %s: %w", uri, err)
			}
			collectors[i] = c
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, c := range collectors {
		batch.Fold(c)
	}
	return nil
}

func (r *Runner) ingest(ctx context.Context, batch *Batch, uri string, tracker *logging.ProgressTracker) error {
	start := time.Now()
	log := logctx.FromContext(ctx)

	reader, err := r.opener.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer reader.Close()

	before := batch.stats
	if err := batch.Consume(ctx, reader); err != nil {
		return err
	}

	elapsed := time.Since(start)
	tracker.RecordCompletion(elapsed)
	r.mem.Observe(log, "input_completed")
	logging.NewCompletionEvent(log, "input_completed", "ingest", elapsed).
		Str("format", source.DetectFormat(uri).String()).
		Count("rows_read", batch.stats.RowsRead-before.RowsRead).
		Count("decode_failures", batch.stats.DecodeFailures-before.DecodeFailures).
		Count("admitted", batch.stats.Admitted-before.Admitted).
		ProgressFromTracker(tracker).
		Log("input ingested")
	return nil
}
