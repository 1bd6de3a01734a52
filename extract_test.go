package binpress_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/binpress"
	"github.com/meigma/binpress/container"
	"github.com/meigma/binpress/internal/testutil"
	"github.com/meigma/binpress/target"
)

func TestExtractPlainFileWritesNothing(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(plain, testutil.FakeStub(t, 4096), 0o755))
	out := filepath.Join(dir, "out")

	_, err := binpress.Extract(plain, out)
	require.ErrorIs(t, err, binpress.ErrNotCompressed)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file on failure")
}

func TestExtractForeignTarget(t *testing.T) {
	// A win32 container extracts on any host: the codec follows the
	// container's platform tag, not the host's.
	input, text := writeInput(t)
	dataPath := filepath.Join(t.TempDir(), "in.compressed")

	win := target.Triple{
		Platform: target.PlatformWin32,
		Arch:     target.ArchX64,
		Libc:     target.LibcNone,
	}
	res, err := binpress.Compress(input,
		binpress.WithDataOutput(dataPath),
		binpress.WithTarget(win))
	require.NoError(t, err)
	assert.Equal(t, "zstd", res.Codec)

	outPath := filepath.Join(t.TempDir(), "out")
	info, err := binpress.Extract(dataPath, outPath)
	require.NoError(t, err)
	assert.Equal(t, "zstd", info.Codec)

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, text, out)
}

func TestExtractRejectsCorruptSizes(t *testing.T) {
	input, _ := writeInput(t)
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "in.compressed")

	_, err := binpress.Compress(input,
		binpress.WithDataOutput(dataPath),
		binpress.WithTarget(linuxTriple))
	require.NoError(t, err)

	for name, size := range map[string]uint64{
		"zero":      0,
		"oversized": (500 << 20) + 1,
	} {
		t.Run(name, func(t *testing.T) {
			raw, err := os.ReadFile(dataPath)
			require.NoError(t, err)
			binary.LittleEndian.PutUint64(raw[container.MarkerLen:], size)
			corrupt := filepath.Join(t.TempDir(), "corrupt")
			require.NoError(t, os.WriteFile(corrupt, raw, 0o644))

			out := filepath.Join(t.TempDir(), "out")
			_, err = binpress.Extract(corrupt, out)
			require.ErrorIs(t, err, container.ErrSizeRange)

			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestExtractTruncatedPayload(t *testing.T) {
	input, _ := writeInput(t)
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "in.compressed")

	_, err := binpress.Compress(input,
		binpress.WithDataOutput(dataPath),
		binpress.WithTarget(linuxTriple))
	require.NoError(t, err)

	raw, err := os.ReadFile(dataPath)
	require.NoError(t, err)
	truncated := filepath.Join(dir, "truncated")
	require.NoError(t, os.WriteFile(truncated, raw[:len(raw)-10], 0o644))

	out := filepath.Join(dir, "out")
	_, err = binpress.Extract(truncated, out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestIsCompressed(t *testing.T) {
	input, _ := writeInput(t)
	dataPath := filepath.Join(t.TempDir(), "in.compressed")
	_, err := binpress.Compress(input,
		binpress.WithDataOutput(dataPath),
		binpress.WithTarget(linuxTriple))
	require.NoError(t, err)

	ok, err := binpress.IsCompressed(dataPath)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = binpress.IsCompressed(input)
	require.NoError(t, err)
	assert.False(t, ok)
}
