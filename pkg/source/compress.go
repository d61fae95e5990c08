package source

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression identifies the stream compression of an input.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionZstd
)

// DetectCompression infers compression from a file name suffix.
func DetectCompression(name string) Compression {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(lower, ".zst"):
		return CompressionZstd
	default:
		return CompressionNone
	}
}

// trimCompression strips a known compression suffix from name.
func trimCompression(name string) string {
	lower := strings.ToLower(name)
	for _, suffix := range []string{".gz", ".zst"} {
		if strings.HasSuffix(lower, suffix) {
			return lower[:len(lower)-len(suffix)]
		}
	}
	return lower
}

// decompress wraps rc according to the suffix of name. Closing the returned
// stream closes the decoder and rc. On error rc is closed.
func decompress(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	switch DetectCompression(name) {
	case CompressionGzip:
		gzr, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &decodedStream{Reader: gzr, closers: []io.Closer{rc, gzr}}, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		dec := zr.IOReadCloser()
		return &decodedStream{Reader: dec, closers: []io.Closer{rc, dec}}, nil
	default:
		return rc, nil
	}
}

// decodedStream reads decompressed data and closes the decoder before the
// underlying stream.
type decodedStream struct {
	io.Reader
	closers []io.Closer
}

func (d *decodedStream) Close() error {
	return closeAll(d.closers)
}
