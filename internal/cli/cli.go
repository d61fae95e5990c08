// Package cli implements the command-line interface for movie-buckets.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/eunmann/movie-buckets/internal/config"
	"github.com/eunmann/movie-buckets/internal/logctx"
	"github.com/eunmann/movie-buckets/pkg/logging"
	"github.com/eunmann/movie-buckets/pkg/metrics"
	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/eunmann/movie-buckets/pkg/pipeline"
	"github.com/eunmann/movie-buckets/pkg/report"
	"github.com/eunmann/movie-buckets/pkg/source"
)

// Run executes the CLI with the given arguments.
func Run(args []string) error {
	return run(args, os.Stdout)
}

func run(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return errors.New("usage: movie-buckets <command> [options]\ncommands: run")
	}

	switch args[0] {
	case "run":
		return runBuckets(args[1:], stdout)
	default:
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// runOptions is the resolved configuration of the run command.
type runOptions struct {
	cutoff      *time.Time
	format      report.Format
	years       int
	workers     int
	metricsFile string
	debug       bool
	human       bool
}

func runBuckets(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	cutoffFlag := fs.String("cutoff", "", "exclude movies released after this month, YYYY-MM (env MOVIE_BUCKETS_CUTOFF)")
	formatFlag := fs.String("format", "", "output format: table or json (env MOVIE_BUCKETS_FORMAT, default table)")
	years := fs.Int("years", report.DefaultYears, "number of years to report, 0 for all (env MOVIE_BUCKETS_YEARS)")
	workers := fs.Int("workers", 1, "inputs decoded concurrently (env MOVIE_BUCKETS_WORKERS)")
	metricsFile := fs.String("metrics-file", "", "write Prometheus metrics to this file (env MOVIE_BUCKETS_METRICS_FILE)")
	envFile := fs.String("env-file", "", "load environment defaults from this dotenv file")
	debug := fs.Bool("debug", false, "enable debug logging")
	human := fs.Bool("human", false, "human-readable logs and amounts")

	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs := fs.Args()
	if len(inputs) == 0 {
		return errors.New("at least one input file is required")
	}

	env, err := config.Load(*envFile)
	if err != nil {
		return err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	opts, err := resolveOptions(env, set, *cutoffFlag, *formatFlag, *years, *workers, *metricsFile)
	if err != nil {
		return err
	}
	opts.debug = *debug
	opts.human = *human

	return execute(inputs, opts, stdout)
}

// resolveOptions merges flag values over environment defaults. A flag wins
// only when it was given on the command line.
func resolveOptions(env config.Env, set map[string]bool, cutoff, format string, years, workers int, metricsFile string) (runOptions, error) {
	var opts runOptions

	if !set["cutoff"] {
		cutoff = ""
	}
	c, err := determineCutoff(cutoff, env.Cutoff)
	if err != nil {
		return opts, err
	}
	opts.cutoff = c

	if !set["format"] {
		format = env.Format
	}
	if opts.format, err = report.ParseFormat(format); err != nil {
		return opts, fmt.Errorf("--format: %w", err)
	}

	if !set["years"] {
		years = env.Years
	}
	if years < 0 {
		return opts, errors.New("--years must not be negative")
	}
	opts.years = years

	if !set["workers"] {
		workers = env.Workers
	}
	if workers < 1 {
		return opts, errors.New("--workers must be at least 1")
	}
	opts.workers = workers

	opts.metricsFile = metricsFile
	if !set["metrics-file"] {
		opts.metricsFile = env.MetricsFile
	}
	return opts, nil
}

func execute(inputs []string, opts runOptions, stdout io.Writer) error {
	start := time.Now()

	logging.Init(opts.debug, opts.human)
	log := logging.WithPhase("run").With().Str("run_id", uuid.NewString()).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logctx.WithLogger(ctx, log)

	opener := &source.Opener{}
	if slices.ContainsFunc(inputs, source.IsS3URI) {
		client, err := source.NewS3Client(ctx)
		if err != nil {
			return fmt.Errorf("create S3 client: %w", err)
		}
		opener.S3 = client
	}

	runner := pipeline.NewRunner(opener, pipeline.Config{Cutoff: opts.cutoff, Workers: opts.workers})
	res, err := runner.Run(ctx, inputs)
	if err != nil {
		return err
	}

	if opts.metricsFile != "" {
		m := metrics.NewRunMetrics()
		m.Observe(res, time.Since(start), time.Now())
		if err := m.WriteTextfile(opts.metricsFile); err != nil {
			return err
		}
		log.Info().Str("path", opts.metricsFile).Msg("metrics written")
	}

	return report.Write(stdout, res, report.Options{
		Format: opts.format,
		Years:  opts.years,
		Human:  opts.human,
	})
}

// determineCutoff resolves the cutoff from the flag, then the environment.
// It returns nil when neither is set.
func determineCutoff(cliValue, envValue string) (*time.Time, error) {
	if cliValue != "" {
		t, err := movies.ParseCutoff(cliValue)
		if err != nil {
			return nil, fmt.Errorf("--cutoff: %w", err)
		}
		return &t, nil
	}

	if envValue != "" {
		t, err := movies.ParseCutoff(envValue)
		if err != nil {
			return nil, fmt.Errorf("MOVIE_BUCKETS_CUTOFF: %w", err)
		}
		return &t, nil
	}

	return nil, nil
}
