package codec

import (
	"bytes"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4 implements Codec using the lz4 frame format. Selectable through
// --quality for callers that want extraction speed over ratio.
type LZ4 struct{}

// Name implements Codec.
func (LZ4) Name() string { return "lz4" }

// Compress implements Codec.
func (LZ4) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(lz4.Level5)); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if _, err := w.Write(src); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress implements Codec.
func (LZ4) Decompress(src []byte, expectedSize uint64) ([]byte, error) {
	return readExact(lz4.NewReader(bytes.NewReader(src)), expectedSize)
}
