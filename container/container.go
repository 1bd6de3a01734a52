// Package container implements the byte layout shared by binpress, binflate
// and the self-extracting stubs.
//
// A container is a 32-byte magic marker, a 35-byte metadata header and the
// compressed payload, in that order, appended to a carrier binary or written
// to a standalone data file:
//
//	marker            32 bytes  runtime-assembled ASCII constant
//	compressed size    8 bytes  uint64, little-endian
//	uncompressed size  8 bytes  uint64, little-endian
//	cache key         16 bytes  lowercase hex, SHA-512 prefix of the payload
//	platform metadata  3 bytes  platform, arch, libc
//	payload            n bytes  backend-specific compressed bytes
package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/meigma/binpress/target"
)

// MaxPayloadSize bounds both size fields in the header. Larger values mark a
// corrupt or hostile container.
const MaxPayloadSize = 500 << 20

// MarkerLen is the length of the magic marker in bytes.
const MarkerLen = 32

const (
	sizeFieldsLen = 16
	cacheKeyLen   = 16
	platformLen   = 3

	// HeaderLen is the number of metadata bytes following the marker.
	HeaderLen = sizeFieldsLen + cacheKeyLen + platformLen
)

// markerParts holds the marker split into pieces so the contiguous marker
// never appears in a compiled binary that scans for it. A single string
// constant (or constant concatenation) would be folded into the binary's
// data section and the stub would find itself before its own payload.
var markerParts = [3]string{"__SMOL", "_PRESSED_DATA", "_MAGIC_MARKER"}

// Marker returns the magic marker, assembled at runtime.
func Marker() []byte {
	b := make([]byte, 0, MarkerLen)
	for _, part := range markerParts {
		b = append(b, part...)
	}
	return b
}

// Sentinel errors for container decoding.
var (
	ErrNoMarker  = errors.New("container: magic marker not found")
	ErrSizeRange = errors.New("container: size field zero or above 500 MiB")
	ErrTruncated = errors.New("container: truncated header")
	ErrPlatform  = errors.New("container: invalid platform metadata")
)

// Header is the decoded container metadata.
type Header struct {
	CompressedSize   uint64
	UncompressedSize uint64
	// CacheKey is the 16-char hex cache key, or "" when the container is
	// uncacheable.
	CacheKey string
	Platform target.Platform
	Arch     target.Arch
	Libc     target.Libc
}

// Validate checks the size bounds and platform metadata.
func (h Header) Validate() error {
	if h.CompressedSize == 0 || h.CompressedSize > MaxPayloadSize {
		return fmt.Errorf("%w: compressed size %d", ErrSizeRange, h.CompressedSize)
	}
	if h.UncompressedSize == 0 || h.UncompressedSize > MaxPayloadSize {
		return fmt.Errorf("%w: uncompressed size %d", ErrSizeRange, h.UncompressedSize)
	}
	if !h.Platform.Valid() || !h.Arch.Valid() || !h.Libc.Valid() {
		return ErrPlatform
	}
	return nil
}

// EncodeHeader renders the 35 metadata bytes that follow the marker. An empty
// cache key is encoded as 16 zero bytes, which decodes back to "".
func EncodeHeader(h Header) ([]byte, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	if h.CacheKey != "" && !validCacheKey(h.CacheKey) {
		return nil, fmt.Errorf("container: cache key %q is not 16 lowercase hex chars", h.CacheKey)
	}

	b := make([]byte, HeaderLen)
	binary.LittleEndian.PutUint64(b[0:8], h.CompressedSize)
	binary.LittleEndian.PutUint64(b[8:16], h.UncompressedSize)
	copy(b[16:32], h.CacheKey)
	b[32] = byte(h.Platform)
	b[33] = byte(h.Arch)
	b[34] = byte(h.Libc)
	return b, nil
}

// Encode renders a complete container: marker, header, payload. The payload
// length must match h.CompressedSize.
func Encode(h Header, payload []byte) ([]byte, error) {
	if uint64(len(payload)) != h.CompressedSize {
		return nil, fmt.Errorf("container: payload length %d does not match header %d", len(payload), h.CompressedSize)
	}
	hdr, err := EncodeHeader(h)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, MarkerLen+HeaderLen+len(payload))
	out = append(out, Marker()...)
	out = append(out, hdr...)
	out = append(out, payload...)
	return out, nil
}

// DecodeHeader reads and validates the metadata header from r, which must be
// positioned just past the marker. On return r is positioned at the payload.
func DecodeHeader(r io.Reader) (Header, error) {
	var b [HeaderLen]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrTruncated, err)
	}

	h := Header{
		CompressedSize:   binary.LittleEndian.Uint64(b[0:8]),
		UncompressedSize: binary.LittleEndian.Uint64(b[8:16]),
		Platform:         target.Platform(b[32]),
		Arch:             target.Arch(b[33]),
		Libc:             target.Libc(b[34]),
	}
	if key := string(b[16:32]); validCacheKey(key) {
		h.CacheKey = key
	}
	if err := h.Validate(); err != nil {
		return Header{}, err
	}
	return h, nil
}

func validCacheKey(key string) bool {
	if len(key) != cacheKeyLen {
		return false
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

const scanChunkSize = 4096

// FindMarker scans r from the start for the magic marker and returns the
// offset just past it. The scan reads fixed-size chunks and re-seeks back
// MarkerLen-1 bytes at each chunk boundary so a marker split across two
// chunks is still found; the first match wins.
func FindMarker(r io.ReadSeeker) (int64, error) {
	marker := Marker()
	buf := make([]byte, scanChunkSize)
	var offset int64

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			if i := bytes.Index(buf[:n], marker); i >= 0 {
				end := offset + int64(i) + MarkerLen
				if _, err := r.Seek(end, io.SeekStart); err != nil {
					return 0, err
				}
				return end, nil
			}
			offset += int64(n)
			if n >= MarkerLen {
				offset -= MarkerLen - 1
				if _, err := r.Seek(offset, io.SeekStart); err != nil {
					return 0, err
				}
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			if n == 0 || n < MarkerLen {
				return 0, ErrNoMarker
			}
			continue
		}
		if err != nil {
			return 0, err
		}
	}
}

// Index returns the byte offset of the marker within b, or -1.
func Index(b []byte) int {
	return bytes.Index(b, Marker())
}

// IsCompressed reports whether the file at path contains a container marker.
func IsCompressed(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = FindMarker(f)
	if errors.Is(err, ErrNoMarker) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
