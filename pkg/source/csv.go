package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/eunmann/movie-buckets/pkg/movies"
)

// csvReader reads movie rows from a CSV stream whose first row is the header.
type csvReader struct {
	csvReader *csv.Reader
	header    *movies.Header
	closers   []io.Closer
}

// newMetadataCSV creates a csv.Reader configured for movie metadata exports:
// record slices are reused, width is checked against the header by the
// caller rather than by encoding/csv, and stray quotes are tolerated.
func newMetadataCSV(r io.Reader) *csv.Reader {
	csvr := csv.NewReader(r)
	csvr.ReuseRecord = true
	csvr.FieldsPerRecord = -1
	csvr.LazyQuotes = true
	return csvr
}

// NewCSVReader creates a CSV reader over already-decompressed data. The
// header row is read immediately; a missing or incomplete header is an error.
func NewCSVReader(r io.Reader) (Reader, error) {
	return newCSVReader(r, nil)
}

// NewCSVReaderFromStream creates a CSV reader from a stream named name,
// decompressing it when the name ends in .gz or .zst. The stream is closed by
// the returned reader's Close, or before returning on error.
func NewCSVReaderFromStream(rc io.ReadCloser, name string) (Reader, error) {
	stream, err := decompress(rc, name)
	if err != nil {
		return nil, err
	}

	closers := []io.Closer{stream}
	r, err := newCSVReader(stream, closers)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	return r, nil
}

func newCSVReader(r io.Reader, closers []io.Closer) (*csvReader, error) {
	csvr := newMetadataCSV(r)

	names, err := csvr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read CSV header: empty input")
		}
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	// names is reused by the next Read; NewHeader copies it.
	header, err := movies.NewHeader(names)
	if err != nil {
		return nil, fmt.Errorf("parse CSV header: %w", err)
	}

	return &csvReader{
		csvReader: csvr,
		header:    header,
		closers:   closers,
	}, nil
}

func (r *csvReader) Header() *movies.Header {
	return r.header
}

// Next returns the next row.
func (r *csvReader) Next() (movies.Row, error) {
	fields, err := r.csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, &movies.DecodeError{Line: pe.StartLine, Err: err}
		}
		return nil, fmt.Errorf("read CSV row: %w", err)
	}

	row, err := r.header.Bind(fields)
	if err != nil {
		var de *movies.DecodeError
		if errors.As(err, &de) {
			de.Line, _ = r.csvReader.FieldPos(0)
		}
		return nil, err
	}
	return row, nil
}

// Close releases resources.
func (r *csvReader) Close() error {
	return closeAll(r.closers)
}
