// Package codec provides the compression backends used for container
// payloads.
//
// Exactly one backend is the build-time default for any compiled target
// (see the default_*.go files); that is the codec a self-extracting stub
// decompresses with. The full set stays available so binpress can produce
// containers for foreign targets and binflate can extract them anywhere.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/meigma/binpress/target"
)

// Codec compresses and decompresses whole payloads in memory.
type Codec interface {
	// Name is the identifier recorded in cache metadata.
	Name() string

	// Compress returns the compressed form of src.
	Compress(src []byte) ([]byte, error)

	// Decompress inflates src and fails unless the output is exactly
	// expectedSize bytes. It never truncates or pads.
	Decompress(src []byte, expectedSize uint64) ([]byte, error)
}

// Sentinel errors.
var (
	ErrUnknown      = errors.New("codec: unknown codec")
	ErrSizeMismatch = errors.New("codec: decompressed size does not match header")
)

// ByName resolves a codec by its --quality name. "lzfse" is accepted as an
// alias for zstd: there is no pure-Go LZFSE and zstd fills the same
// fast-codec role on the targets that used it.
func ByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "lzma", "xz":
		return LZMA{}, nil
	case "lz4":
		return LZ4{}, nil
	case "zlib":
		return Zlib{}, nil
	case "zstd", "lzfse":
		return Zstd{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
}

// ForPlatform returns the codec that a platform's stubs are built with. The
// container header carries no algorithm field; the platform byte implies it.
func ForPlatform(p target.Platform) Codec {
	if p == target.PlatformLinux {
		return LZMA{}
	}
	return Zstd{}
}
