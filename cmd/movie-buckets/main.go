// Command movie-buckets aggregates movie metadata into per-company monthly
// buckets.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/eunmann/movie-buckets/internal/cli"
	"github.com/eunmann/movie-buckets/pkg/logging"
)

func main() {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logging.L().Debug().Msgf(format, args...)
	})); err != nil {
		logging.L().Warn().Err(err).Msg("set GOMAXPROCS")
	}

	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
