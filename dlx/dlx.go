// Package dlx implements the shared content-addressed cache that
// self-extracting binaries execute from.
//
// Entries live under a per-key directory:
//
//	~/.socket/_dlx/<cache key>/bin-<platform>-<arch>
//	~/.socket/_dlx/<cache key>/.dlx-metadata.json
//
// The cache key is the first 16 hex characters of the SHA-512 of the
// compressed payload, so re-wrapping the same payload in a different carrier
// still hits the same entry. Entries are immutable once written and are never
// garbage-collected here; removing the directory is the only eviction path.
package dlx

import (
	// go-digest only registers sha256 itself; sha512 must be linked in.
	_ "crypto/sha512"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/meigma/binpress/target"
)

// Environment overrides for the cache location.
const (
	// DirEnv fully overrides the cache directory.
	DirEnv = "SOCKET_DLX_DIR"
	// HomeEnv overrides the base directory that _dlx is placed under.
	HomeEnv = "SOCKET_HOME"
)

const (
	socketDirName = ".socket"
	cacheDirName  = "_dlx"
	metadataName  = ".dlx-metadata.json"

	// KeyLen is the cache key length in hex characters.
	KeyLen = 16
)

// CacheKey derives the content address for a compressed payload.
func CacheKey(payload []byte) string {
	return digest.SHA512.FromBytes(payload).Encoded()[:KeyLen]
}

// Checksum returns the full 128-char hex SHA-512 of a payload, recorded in
// cache metadata alongside the truncated key.
func Checksum(payload []byte) string {
	return digest.SHA512.FromBytes(payload).Encoded()
}

// BaseDir resolves the cache directory: SOCKET_DLX_DIR, then
// SOCKET_HOME/_dlx, then ~/.socket/_dlx, then a temp-dir fallback for
// homeless environments.
func BaseDir() string {
	if dir := os.Getenv(DirEnv); dir != "" {
		return dir
	}
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, cacheDirName)
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, socketDirName, cacheDirName)
	}
	return filepath.Join(os.TempDir(), socketDirName, cacheDirName)
}

// EntryDir returns the directory for a cache key.
func EntryDir(key string) string {
	return filepath.Join(BaseDir(), key)
}

// BinaryName returns the file name a cached binary is stored under. The name
// encodes platform and arch so one entry directory cannot serve the wrong
// target.
func BinaryName(p target.Platform, a target.Arch) string {
	name := "bin-" + p.String() + "-" + a.String()
	if p == target.PlatformWin32 {
		name += ".exe"
	}
	return name
}

// Lookup resolves a cache hit: the binary must exist and have exactly the
// expected size. Content addressing makes re-hashing on every launch
// unnecessary; the size check catches truncated writes.
func Lookup(key string, p target.Platform, a target.Arch, expectedSize uint64) (string, bool) {
	path := filepath.Join(EntryDir(key), BinaryName(p, a))
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	if info.Size() < 0 || uint64(info.Size()) != expectedSize {
		return "", false
	}
	return path, true
}
