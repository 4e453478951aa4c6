package persistence

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// WrapWriter layers the payload codec over w. The returned closer must be
// closed before the underlying writer is flushed; for CompressionNone it is
// a no-op.
func WrapWriter(w io.Writer, c Compression) (io.Writer, io.Closer, error) {
	switch c {
	case CompressionNone:
		return w, nopCloser{}, nil
	case CompressionLZ4:
		zw := lz4.NewWriter(w)
		return zw, zw, nil
	case CompressionZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, err
		}
		return zw, zw, nil
	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidCompression, c)
	}
}

// WrapReader layers the payload codec over r.
func WrapReader(r io.Reader, c Compression) (io.Reader, error) {
	switch c {
	case CompressionNone:
		return r, nil
	case CompressionLZ4:
		return lz4.NewReader(r), nil
	case CompressionZSTD:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidCompression, c)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
