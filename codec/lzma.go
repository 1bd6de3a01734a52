package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz"
)

// LZMA implements Codec using the xz stream format. This is the Linux stub
// codec, mirroring the liblzma decoder the platform traditionally shipped;
// the reader accepts concatenated streams the way LZMA_CONCATENATED does.
type LZMA struct{}

// Name implements Codec.
func (LZMA) Name() string { return "lzma" }

// Compress implements Codec.
func (LZMA) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress implements Codec.
func (LZMA) Decompress(src []byte, expectedSize uint64) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	return readExact(r, expectedSize)
}

// readExact drains r and enforces that it yields exactly expectedSize bytes.
func readExact(r io.Reader, expectedSize uint64) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(int(expectedSize))
	n, err := io.Copy(&buf, io.LimitReader(r, int64(expectedSize)+1))
	if err != nil {
		return nil, err
	}
	if uint64(n) != expectedSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, n, expectedSize)
	}
	return buf.Bytes(), nil
}
