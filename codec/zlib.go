package codec

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Zlib implements Codec using the zlib stream format, kept for parity with
// the historical --quality=zlib option.
type Zlib struct{}

// Name implements Codec.
func (Zlib) Name() string { return "zlib" }

// Compress implements Codec.
func (Zlib) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress implements Codec.
func (Zlib) Decompress(src []byte, expectedSize uint64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("zlib: %w", err)
	}
	defer r.Close()
	return readExact(r, expectedSize)
}
