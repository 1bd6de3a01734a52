package dlx

import (
	"time"

	"github.com/meigma/binpress/target"
)

// Metadata mirrors the DlxMetadata JSON schema written next to every cached
// binary. The field names are part of the on-disk format shared with other
// dlx consumers; do not rename them.
type Metadata struct {
	Version           string         `json:"version"`
	CacheKey          string         `json:"cache_key"`
	Timestamp         int64          `json:"timestamp"`
	Checksum          string         `json:"checksum"`
	ChecksumAlgorithm string         `json:"checksum_algorithm"`
	Platform          string         `json:"platform"`
	Arch              string         `json:"arch"`
	Libc              string         `json:"libc,omitempty"`
	Size              uint64         `json:"size"`
	Source            MetadataSource `json:"source"`
	Extra             MetadataExtra  `json:"extra"`
}

// MetadataSource records where the cached binary came from.
type MetadataSource struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

// MetadataExtra records compression details for diagnostics.
type MetadataExtra struct {
	CompressedSize       uint64  `json:"compressed_size"`
	CompressionAlgorithm string  `json:"compression_algorithm"`
	CompressionRatio     float64 `json:"compression_ratio"`
}

// metadataVersion is the current schema version.
const metadataVersion = "1.0.0"

// NewMetadata builds the metadata record for a freshly decompressed binary.
// checksum is the full hex SHA-512 of the compressed payload; sourcePath is
// the carrier the payload was extracted from.
func NewMetadata(key, checksum, algorithm, sourcePath string, t target.Triple, size, compressedSize uint64) Metadata {
	ratio := 0.0
	if compressedSize > 0 {
		ratio = float64(size) / float64(compressedSize)
	}
	return Metadata{
		Version:           metadataVersion,
		CacheKey:          key,
		Timestamp:         time.Now().UnixMilli(),
		Checksum:          "sha512-" + checksum,
		ChecksumAlgorithm: "sha512",
		Platform:          t.Platform.String(),
		Arch:              t.Arch.String(),
		Libc:              t.Libc.String(),
		Size:              size,
		Source: MetadataSource{
			Type: "decompression",
			Path: sourcePath,
		},
		Extra: MetadataExtra{
			CompressedSize:       compressedSize,
			CompressionAlgorithm: algorithm,
			CompressionRatio:     ratio,
		},
	}
}
