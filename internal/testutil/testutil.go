// Package testutil provides shared helpers for binpress tests.
package testutil

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/meigma/binpress/container"
	"github.com/meigma/binpress/stubs"
	"github.com/meigma/binpress/target"
)

// FakeStub returns deterministic pseudo-binary bytes of the given size that
// look like loader code: an ELF-ish prefix followed by patterned filler. The
// result is guaranteed not to contain the container marker.
func FakeStub(t *testing.T, size int) []byte {
	t.Helper()

	b := make([]byte, size)
	rng := rand.New(rand.NewSource(int64(size)))
	copy(b, []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0})
	for i := 8; i < size; i++ {
		b[i] = byte(rng.Intn(256))
	}
	if container.Index(b) >= 0 {
		t.Fatal("fake stub accidentally contains the container marker")
	}
	return b
}

// StubDir creates a directory of fake stubs for the given triples and points
// BINPRESS_STUB_DIR at it for the duration of the test. It returns the stub
// bytes by triple string.
func StubDir(t *testing.T, triples ...target.Triple) map[string][]byte {
	t.Helper()

	dir := t.TempDir()
	out := make(map[string][]byte, len(triples))
	for i, tr := range triples {
		stub := FakeStub(t, 2048+i)
		if err := os.WriteFile(filepath.Join(dir, stubs.Name(tr)), stub, 0o755); err != nil {
			t.Fatal(err)
		}
		out[tr.String()] = stub
	}
	t.Setenv(stubs.DirEnv, dir)
	return out
}

// CountMarkers returns the number of container markers in b.
func CountMarkers(b []byte) int {
	return bytes.Count(b, container.Marker())
}
