package container

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/meigma/binpress/target"
)

func testHeader() Header {
	return Header{
		CompressedSize:   64,
		UncompressedSize: 128,
		CacheKey:         "0123456789abcdef",
		Platform:         target.PlatformLinux,
		Arch:             target.ArchX64,
		Libc:             target.LibcGlibc,
	}
}

func TestMarker(t *testing.T) {
	t.Parallel()

	m := Marker()
	if len(m) != MarkerLen {
		t.Fatalf("len(Marker()) = %d, want %d", len(m), MarkerLen)
	}
	// Rebuild the expected bytes without ever writing the contiguous
	// string, for the same reason the production code does not.
	want := append([]byte("__SMOL"), "_PRESSED_DATA"...)
	want = append(want, "_MAGIC_MARKER"...)
	if !bytes.Equal(m, want) {
		t.Fatalf("Marker() = %q, want %q", m, want)
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	t.Parallel()

	h := testHeader()
	b, err := EncodeHeader(h)
	if err != nil {
		t.Fatalf("EncodeHeader() error = %v", err)
	}
	if len(b) != HeaderLen {
		t.Fatalf("len(EncodeHeader()) = %d, want %d", len(b), HeaderLen)
	}

	got, err := DecodeHeader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if got != h {
		t.Fatalf("DecodeHeader() = %+v, want %+v", got, h)
	}
}

func TestHeaderEmptyCacheKey(t *testing.T) {
	t.Parallel()

	h := testHeader()
	h.CacheKey = ""
	b, err := EncodeHeader(h)
	if err != nil {
		t.Fatalf("EncodeHeader() error = %v", err)
	}
	got, err := DecodeHeader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if got.CacheKey != "" {
		t.Fatalf("CacheKey = %q, want empty", got.CacheKey)
	}
}

func TestHeaderSizeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		compressed   uint64
		uncompressed uint64
	}{
		{"zero compressed", 0, 100},
		{"zero uncompressed", 100, 0},
		{"compressed over bound", MaxPayloadSize + 1, 100},
		{"uncompressed over bound", 100, MaxPayloadSize + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := testHeader()
			h.CompressedSize = tt.compressed
			h.UncompressedSize = tt.uncompressed

			if _, err := EncodeHeader(h); !errors.Is(err, ErrSizeRange) {
				t.Errorf("EncodeHeader() error = %v, want ErrSizeRange", err)
			}

			// A hand-built wire header with the same bad sizes must
			// be rejected on decode too.
			b := make([]byte, HeaderLen)
			putUint64(b[0:8], tt.compressed)
			putUint64(b[8:16], tt.uncompressed)
			copy(b[16:32], "0123456789abcdef")
			b[34] = byte(target.LibcNone)
			if _, err := DecodeHeader(bytes.NewReader(b)); !errors.Is(err, ErrSizeRange) {
				t.Errorf("DecodeHeader() error = %v, want ErrSizeRange", err)
			}
		})
	}
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func TestDecodeHeaderTruncated(t *testing.T) {
	t.Parallel()

	b, err := EncodeHeader(testHeader())
	if err != nil {
		t.Fatalf("EncodeHeader() error = %v", err)
	}
	for _, n := range []int{0, 1, 8, 16, HeaderLen - 1} {
		if _, err := DecodeHeader(bytes.NewReader(b[:n])); !errors.Is(err, ErrTruncated) {
			t.Errorf("DecodeHeader(%d bytes) error = %v, want ErrTruncated", n, err)
		}
	}
}

func TestEncodePayloadLengthMismatch(t *testing.T) {
	t.Parallel()

	h := testHeader()
	if _, err := Encode(h, make([]byte, h.CompressedSize+1)); err == nil {
		t.Fatal("Encode() with wrong payload length: error = nil, want error")
	}
}

func TestFindMarker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix int
	}{
		{"at start", 0},
		{"mid chunk", 100},
		{"spanning chunk boundary", scanChunkSize - MarkerLen/2},
		{"at chunk boundary", scanChunkSize},
		{"in later chunk", 3*scanChunkSize + 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := make([]byte, tt.prefix)
			for i := range b {
				b[i] = byte(i)
			}
			b = append(b, Marker()...)
			b = append(b, 1, 2, 3)

			off, err := FindMarker(bytes.NewReader(b))
			if err != nil {
				t.Fatalf("FindMarker() error = %v", err)
			}
			if want := int64(tt.prefix + MarkerLen); off != want {
				t.Fatalf("FindMarker() = %d, want %d", off, want)
			}
		})
	}
}

func TestFindMarkerFirstMatchWins(t *testing.T) {
	t.Parallel()

	b := make([]byte, 50)
	b = append(b, Marker()...)
	b = append(b, make([]byte, 200)...)
	b = append(b, Marker()...)

	off, err := FindMarker(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("FindMarker() error = %v", err)
	}
	if want := int64(50 + MarkerLen); off != want {
		t.Fatalf("FindMarker() = %d, want %d (first match)", off, want)
	}
}

func TestFindMarkerAbsent(t *testing.T) {
	t.Parallel()

	for _, size := range []int{0, 10, scanChunkSize, scanChunkSize*2 + 5} {
		b := bytes.Repeat([]byte{0x7f}, size)
		if _, err := FindMarker(bytes.NewReader(b)); !errors.Is(err, ErrNoMarker) {
			t.Errorf("FindMarker(%d bytes) error = %v, want ErrNoMarker", size, err)
		}
	}
}

func TestIsCompressed(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	plain := filepath.Join(dir, "plain")
	if err := os.WriteFile(plain, []byte("just an ordinary file"), 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err := IsCompressed(plain)
	if err != nil {
		t.Fatalf("IsCompressed(plain) error = %v", err)
	}
	if ok {
		t.Error("IsCompressed(plain) = true, want false")
	}

	pressed := filepath.Join(dir, "pressed")
	content := append([]byte("stub code here"), Marker()...)
	if err := os.WriteFile(pressed, content, 0o644); err != nil {
		t.Fatal(err)
	}
	ok, err = IsCompressed(pressed)
	if err != nil {
		t.Fatalf("IsCompressed(pressed) error = %v", err)
	}
	if !ok {
		t.Error("IsCompressed(pressed) = false, want true")
	}
}
