// Package loader is the run-time half of a self-extracting binary.
//
// A stub's main function calls Run, which locates the container appended to
// the running executable, resolves or populates the shared dlx cache and
// replaces the process with the original program. The whole flow is
// synchronous and run-to-completion; concurrency only exists across
// independent stub launches racing on the cache, which content addressing
// and atomic renames make safe.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/meigma/binpress/codec"
	"github.com/meigma/binpress/container"
	"github.com/meigma/binpress/dlx"
	"github.com/meigma/binpress/target"
)

// StubPathEnv overrides self-location for restricted environments where
// /proc is unavailable and os.Executable cannot resolve the stub.
const StubPathEnv = "BINPRESS_STUB_PATH"

// Run executes the wrapped binary. On Unix a successful Run never returns:
// the process image is replaced. Every error names the step that failed so
// the stub can print a single useful diagnostic.
func Run() error {
	selfPath, f, err := openSelf()
	if err != nil {
		return fmt.Errorf("locate self: %w", err)
	}

	path, temp, err := resolve(f, selfPath)
	if err != nil {
		return err
	}

	// All descriptors are closed and buffers dropped by now; nothing of
	// this process leaks past the exec.
	if err := execBinary(path); err != nil {
		if temp {
			_ = os.Remove(path)
		}
		return err
	}
	return nil
}

// resolve walks the loader state machine up to (but not including) exec and
// returns the path of the binary to execute. It closes f on every path.
//
// On a cache miss the decompressed binary lands in the cache (or, when the
// cache is unwritable, in a temp file chosen tmpfs-first; temp reports
// that). A temp file is deliberately not removed here: it must still exist
// for the exec that follows, and the kernel reclaims it with the process's
// own lifetime semantics.
func resolve(f *os.File, selfPath string) (path string, temp bool, err error) {
	if _, err := container.FindMarker(f); err != nil {
		f.Close()
		return "", false, fmt.Errorf("locate container: %w", err)
	}
	hdr, err := container.DecodeHeader(f)
	if err != nil {
		f.Close()
		return "", false, fmt.Errorf("read header: %w", err)
	}

	// Fast path: an already-populated cache entry means no payload read
	// and no decompression at all.
	if hdr.CacheKey != "" {
		if cached, ok := dlx.Lookup(hdr.CacheKey, hdr.Platform, hdr.Arch, hdr.UncompressedSize); ok {
			f.Close()
			return cached, false, nil
		}
	}

	payload := make([]byte, hdr.CompressedSize)
	if _, err := io.ReadFull(f, payload); err != nil {
		f.Close()
		return "", false, fmt.Errorf("read payload: %w", err)
	}
	f.Close()

	bin, err := codec.Default().Decompress(payload, hdr.UncompressedSize)
	if err != nil {
		return "", false, fmt.Errorf("decompress: %w", err)
	}

	// Caching under a key the payload does not hash to would poison the
	// entry for every carrier of the real content, so a stale key demotes
	// this launch to temp-file execution.
	if hdr.CacheKey != "" && dlx.CacheKey(payload) == hdr.CacheKey {
		tr := target.Triple{Platform: hdr.Platform, Arch: hdr.Arch, Libc: hdr.Libc}
		meta := dlx.NewMetadata(hdr.CacheKey, dlx.Checksum(payload), codec.Default().Name(),
			selfPath, tr, hdr.UncompressedSize, hdr.CompressedSize)
		if cached, err := dlx.Write(hdr.CacheKey, bin, tr, meta); err == nil {
			return cached, false, nil
		}
		fmt.Fprintln(os.Stderr, "binstub: cache unavailable, falling back to temp directory")
	}

	tempPath, err := writeTemp(bin)
	if err != nil {
		return "", false, fmt.Errorf("write temp file: %w", err)
	}
	return tempPath, true, nil
}
