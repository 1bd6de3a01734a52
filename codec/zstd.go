package codec

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Zstd implements Codec using zstandard. It is the stub codec for the darwin
// and win32 targets, standing in for LZFSE and LZMS, and the decode target of
// the "lzfse" quality alias.
type Zstd struct{}

// Name implements Codec.
func (Zstd) Name() string { return "zstd" }

// Compress implements Codec.
func (Zstd) Compress(src []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

// minDecoderMemory floors the decoder memory bound. WithDecoderMaxMemory
// also clamps the frame window the decoder will accept, and small expected
// sizes fall below the window even tiny frames declare, rejecting valid
// payloads. The explicit length check below still catches oversized output.
const minDecoderMemory = 1 << 20

// Decompress implements Codec.
func (Zstd) Decompress(src []byte, expectedSize uint64) ([]byte, error) {
	maxMem := expectedSize
	if maxMem < minDecoderMemory {
		maxMem = minDecoderMemory
	}
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxMem),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	defer dec.Close()

	out, err := dec.DecodeAll(src, make([]byte, 0, expectedSize))
	if err != nil {
		return nil, fmt.Errorf("zstd: %w", err)
	}
	if uint64(len(out)) != expectedSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSizeMismatch, len(out), expectedSize)
	}
	return out, nil
}
