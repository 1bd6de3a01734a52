package binpress_test

import (
	"bytes"
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

func compressedStub(t *testing.T) (string, []byte) {
	t.Helper()
	stubsByTriple := testutil.StubDir(t, linuxTriple)
	input, _ := writeInput(t)
	stubPath := filepath.Join(t.TempDir(), "app")

	_, err := binpress.Compress(input,
		binpress.WithStubOutput(stubPath),
		binpress.WithTarget(linuxTriple))
	require.NoError(t, err)
	return stubPath, stubsByTriple[linuxTriple.String()]
}

func TestUpdateIdempotent(t *testing.T) {
	stubPath, stub := compressedStub(t)
	input, text := writeInput(t)

	var sizes []int64
	for i := 0; i < 3; i++ {
		res, err := binpress.Update(stubPath, input)
		require.NoError(t, err)
		assert.Equal(t, stubPath, res.StubPath)

		out, err := os.ReadFile(stubPath)
		require.NoError(t, err)
		assert.Equal(t, 1, testutil.CountMarkers(out),
			"repack %d must replace the container, not append", i+1)
		assert.True(t, bytes.HasPrefix(out, stub))
		sizes = append(sizes, int64(len(out)))
	}
	// Same payload, same codec: the layout is byte-stable across repacks.
	assert.Equal(t, sizes[0], sizes[1])
	assert.Equal(t, sizes[1], sizes[2])

	outPath := filepath.Join(t.TempDir(), "orig")
	_, err := binpress.Extract(stubPath, outPath)
	require.NoError(t, err)
	orig, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, text, orig)
}

func TestUpdateNewPayload(t *testing.T) {
	stubPath, _ := compressedStub(t)

	next := bytes.Repeat([]byte("replacement payload\n"), 80)
	nextPath := filepath.Join(t.TempDir(), "next")
	require.NoError(t, os.WriteFile(nextPath, next, 0o644))

	res, err := binpress.Update(stubPath, nextPath)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(next)), res.UncompressedSize)

	outPath := filepath.Join(t.TempDir(), "orig")
	_, err = binpress.Extract(stubPath, outPath)
	require.NoError(t, err)
	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, next, out)
}

func TestUpdateKeepsTargetFromHeader(t *testing.T) {
	stubPath, _ := compressedStub(t)
	input, _ := writeInput(t)

	res, err := binpress.Update(stubPath, input)
	require.NoError(t, err)
	assert.Equal(t, linuxTriple, res.Target)
	assert.Equal(t, "lzma", res.Codec)
}

func TestUpdateRedirectedOutput(t *testing.T) {
	stubPath, _ := compressedStub(t)
	input, _ := writeInput(t)
	before, err := os.ReadFile(stubPath)
	require.NoError(t, err)

	otherPath := filepath.Join(t.TempDir(), "app2")
	res, err := binpress.Update(stubPath, input, binpress.WithStubOutput(otherPath))
	require.NoError(t, err)
	assert.Equal(t, otherPath, res.StubPath)

	after, err := os.ReadFile(stubPath)
	require.NoError(t, err)
	assert.Equal(t, before, after, "in-place stub untouched when output is redirected")

	redirected, err := os.ReadFile(otherPath)
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CountMarkers(redirected))
}

func TestUpdatePlainFile(t *testing.T) {
	plain := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(plain, testutil.FakeStub(t, 4096), 0o755))
	input, _ := writeInput(t)

	_, err := binpress.Update(plain, input)
	require.ErrorIs(t, err, binpress.ErrNotCompressed)
}

func TestUpdateRejectsDataOutput(t *testing.T) {
	stubPath, _ := compressedStub(t)
	input, _ := writeInput(t)

	_, err := binpress.Update(stubPath, input,
		binpress.WithDataOutput(filepath.Join(t.TempDir(), "data")))
	require.ErrorIs(t, err, binpress.ErrNoOutput)
}

func TestUpdateOverridesTarget(t *testing.T) {
	stubPath, _ := compressedStub(t)
	input, _ := writeInput(t)

	darwin := target.Triple{
		Platform: target.PlatformDarwin,
		Arch:     target.ArchARM64,
		Libc:     target.LibcNone,
	}
	res, err := binpress.Update(stubPath, input, binpress.WithTarget(darwin))
	require.NoError(t, err)
	assert.Equal(t, darwin, res.Target)
	assert.Equal(t, "zstd", res.Codec)

	raw, err := os.ReadFile(stubPath)
	require.NoError(t, err)
	idx := container.Index(raw)
	require.GreaterOrEqual(t, idx, 0)
	hdr, err := container.DecodeHeader(bytes.NewReader(raw[idx+container.MarkerLen:]))
	require.NoError(t, err)
	assert.Equal(t, target.PlatformDarwin, hdr.Platform)
}
