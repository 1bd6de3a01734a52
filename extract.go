package binpress

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meigma/binpress/codec"
	"github.com/meigma/binpress/container"
)

// ExtractInfo describes a completed extraction.
type ExtractInfo struct {
	Header     container.Header
	Codec      string
	OutputPath string
}

// IsCompressed reports whether the file at path carries a container marker.
func IsCompressed(path string) (bool, error) {
	return container.IsCompressed(path)
}

// Extract inflates the container embedded in inputPath and writes the
// original executable to outputPath without running it. The codec is implied
// by the container's platform tag, so foreign-target containers extract on
// any host. Nothing is written unless decompression fully succeeds.
func Extract(inputPath, outputPath string) (*ExtractInfo, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("binpress: open input: %w", err)
	}
	defer f.Close()

	if _, err := container.FindMarker(f); err != nil {
		if errors.Is(err, container.ErrNoMarker) {
			return nil, fmt.Errorf("%w: %s", ErrNotCompressed, inputPath)
		}
		return nil, err
	}
	hdr, err := container.DecodeHeader(f)
	if err != nil {
		return nil, err
	}

	payload := make([]byte, hdr.CompressedSize)
	if _, err := io.ReadFull(f, payload); err != nil {
		return nil, fmt.Errorf("binpress: read payload: %w", err)
	}

	c := codec.ForPlatform(hdr.Platform)
	bin, err := c.Decompress(payload, hdr.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("binpress: decompress: %w", err)
	}

	if err := writeOutput(outputPath, bin, 0o755); err != nil {
		return nil, err
	}
	return &ExtractInfo{
		Header:     hdr,
		Codec:      c.Name(),
		OutputPath: outputPath,
	}, nil
}
