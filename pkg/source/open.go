package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Format identifies the table encoding of an input.
type Format int

const (
	FormatCSV Format = iota
	FormatParquet
)

func (f Format) String() string {
	if f == FormatParquet {
		return "parquet"
	}
	return "csv"
}

// DetectFormat infers the format from a file name, ignoring a compression
// suffix. Anything that is not .parquet is read as CSV.
func DetectFormat(name string) Format {
	if strings.HasSuffix(trimCompression(name), ".parquet") {
		return FormatParquet
	}
	return FormatCSV
}

// ObjectStreamer is the subset of S3Client used to open s3:// inputs.
type ObjectStreamer interface {
	StreamObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

// ErrNoS3Client is returned when an s3:// input is opened without a client.
var ErrNoS3Client = errors.New("s3 input given but no S3 client configured")

// Opener opens inputs named by local path or s3:// URI.
type Opener struct {
	// S3 streams s3:// inputs. It may be nil when no input is remote.
	S3 ObjectStreamer
}

// Open opens uri and reads its header. Failure to open or to parse the
// header is fatal for the input.
func (o *Opener) Open(ctx context.Context, uri string) (Reader, error) {
	stream, err := o.stream(ctx, uri)
	if err != nil {
		return nil, err
	}

	if DetectFormat(uri) == FormatCSV {
		return NewCSVReaderFromStream(stream, uri)
	}

	// Local, uncompressed Parquet can be read in place.
	if f, ok := stream.(*os.File); ok && DetectCompression(uri) == CompressionNone {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("stat %s: %w", uri, err)
		}
		r, err := NewParquetReader(f, info.Size())
		if err != nil {
			f.Close()
			return nil, err
		}
		return &withClosers{Reader: r, closers: []io.Closer{f}}, nil
	}

	stream, err = decompress(stream, uri)
	if err != nil {
		return nil, err
	}
	return NewParquetReaderFromStream(stream)
}

func (o *Opener) stream(ctx context.Context, uri string) (io.ReadCloser, error) {
	if !IsS3URI(uri) {
		f, err := os.Open(uri)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		return f, nil
	}

	if o.S3 == nil {
		return nil, ErrNoS3Client
	}
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	return o.S3.StreamObject(ctx, bucket, key)
}

// withClosers closes extra resources after the wrapped reader.
type withClosers struct {
	Reader
	closers []io.Closer
}

func (w *withClosers) Close() error {
	err := w.Reader.Close()
	if cerr := closeAll(w.closers); err == nil {
		err = cerr
	}
	return err
}
