// Package source opens movie metadata tables (CSV or Parquet, local or S3,
// optionally gzip or zstd compressed) and yields their rows by column name.
package source

import (
	"io"

	"github.com/eunmann/movie-buckets/pkg/movies"
)

// Reader is the unified interface for reading movie metadata rows.
type Reader interface {
	// Header returns the resolved column header.
	Header() *movies.Header

	// Next returns the next row. It returns io.EOF when all rows have been
	// read. A *movies.DecodeError means only the current row is unusable and
	// reading may continue; any other error ends the stream.
	//
	// The returned row is only valid until the next call to Next.
	Next() (movies.Row, error)

	// Close releases resources associated with the reader.
	Close() error
}

// closeAll closes closers in reverse order and returns the first error.
func closeAll(closers []io.Closer) error {
	var firstErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
