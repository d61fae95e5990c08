package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/eunmann/movie-buckets/pkg/movies"
	"github.com/parquet-go/parquet-go"
)

// parquetReader reads movie rows from a Parquet file, one row group at a
// time. Columns are matched to the movie header by name; every value is
// rendered to text so CSV and Parquet rows decode identically.
type parquetReader struct {
	file     *parquet.File
	tempFile *os.File // only set when the data was buffered by us
	header   *movies.Header

	rowGroups    []parquet.RowGroup
	currentRGIdx int
	currentRows  parquet.Rows
	rowBuf       []parquet.Row
	bufIdx       int
	bufLen       int
	rowsRead     int

	record []string
}

// NewParquetReader creates a Parquet reader from an io.ReaderAt, such as a
// local file.
func NewParquetReader(r io.ReaderAt, size int64) (Reader, error) {
	file, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	return newParquetReader(file, nil)
}

// NewParquetReaderFromStream creates a Parquet reader from a stream.
// Parquet needs random access, so the stream is buffered to a temp file that
// is removed on Close. The stream is always closed before returning.
func NewParquetReaderFromStream(r io.ReadCloser) (Reader, error) {
	tempFile, err := os.CreateTemp("", "movie-metadata-*.parquet")
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		tempFile.Close()
		os.Remove(tempFile.Name())
	}

	written, err := io.Copy(tempFile, r)
	r.Close()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("buffer parquet data: %w", err)
	}

	file, err := parquet.OpenFile(tempFile, written)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	pr, err := newParquetReader(file, tempFile)
	if err != nil {
		cleanup()
		return nil, err
	}
	return pr, nil
}

func newParquetReader(file *parquet.File, tempFile *os.File) (*parquetReader, error) {
	fields := file.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		if !field.Leaf() {
			return nil, fmt.Errorf("parquet column %q: nested columns are not supported", field.Name())
		}
		names[i] = field.Name()
	}

	header, err := movies.NewHeader(names)
	if err != nil {
		return nil, fmt.Errorf("parse parquet schema: %w", err)
	}

	return &parquetReader{
		file:         file,
		tempFile:     tempFile,
		header:       header,
		rowGroups:    file.RowGroups(),
		currentRGIdx: -1,
		rowBuf:       make([]parquet.Row, 1024),
		record:       make([]string, len(names)),
	}, nil
}

func (r *parquetReader) Header() *movies.Header {
	return r.header
}

// Next returns the next row.
func (r *parquetReader) Next() (movies.Row, error) {
	for {
		if r.bufIdx < r.bufLen {
			row := r.rowBuf[r.bufIdx]
			r.bufIdx++
			r.rowsRead++
			return r.bind(row)
		}

		if r.currentRows != nil {
			n, err := r.currentRows.ReadRows(r.rowBuf)
			if n > 0 {
				r.bufIdx = 0
				r.bufLen = n
				continue
			}
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("read parquet rows: %w", err)
			}
			r.currentRows.Close()
			r.currentRows = nil
		}

		r.currentRGIdx++
		if r.currentRGIdx >= len(r.rowGroups) {
			return nil, io.EOF
		}
		r.currentRows = r.rowGroups[r.currentRGIdx].Rows()
	}
}

func (r *parquetReader) bind(row parquet.Row) (movies.Row, error) {
	clear(r.record)
	for _, val := range row {
		col := val.Column()
		if col < 0 || col >= len(r.record) {
			continue
		}
		r.record[col] = valueText(val)
	}

	bound, err := r.header.Bind(r.record)
	if err != nil {
		var de *movies.DecodeError
		if errors.As(err, &de) {
			de.Line = r.rowsRead
		}
		return nil, err
	}
	return bound, nil
}

// valueText renders a Parquet value in the textual form the CSV export uses.
// Nulls render as the empty string. Floating point values never use exponent
// notation, so whole-number money columns stored as DOUBLE decode as integers.
func valueText(v parquet.Value) string {
	if v.IsNull() {
		return ""
	}
	switch v.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(v.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(v.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(v.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(v.Float()), 'f', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64)
	default:
		return string(v.ByteArray())
	}
}

// Close releases resources.
func (r *parquetReader) Close() error {
	if r.currentRows != nil {
		r.currentRows.Close()
		r.currentRows = nil
	}

	if r.tempFile != nil {
		name := r.tempFile.Name()
		err := r.tempFile.Close()
		os.Remove(name)
		r.tempFile = nil
		return err
	}
	return nil
}
