package binpress

import (
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/meigma/binpress/codec"
	"github.com/meigma/binpress/container"
	"github.com/meigma/binpress/dlx"
	"github.com/meigma/binpress/stubs"
	"github.com/meigma/binpress/target"
)

// Result describes a completed compression or repack.
type Result struct {
	UncompressedSize uint64
	CompressedSize   uint64
	CacheKey         string
	Codec            string
	Target           target.Triple
	StubPath         string
	DataPath         string
}

// Ratio returns compressed size as a fraction of the input size.
func (r *Result) Ratio() float64 {
	if r.UncompressedSize == 0 {
		return 0
	}
	return float64(r.CompressedSize) / float64(r.UncompressedSize)
}

// Compress reads the executable at inputPath and writes a container for it.
// At least one of WithStubOutput and WithDataOutput is required; requesting
// both writes two files from a single compression pass.
func Compress(inputPath string, opts ...Option) (*Result, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.stubPath == "" && cfg.dataPath == "" {
		return nil, ErrNoOutput
	}

	t := cfg.triple
	if !cfg.tripleSet {
		t = target.Host()
	}

	// Resolve the stub before spending time compressing: a missing stub
	// for the requested target is an up-front configuration error.
	var stub []byte
	if cfg.stubPath != "" {
		var err error
		stub, err = stubs.For(t)
		if err != nil {
			return nil, err
		}
		if container.Index(stub) >= 0 {
			return nil, ErrMarkerInStub
		}
	}

	c, err := resolveCodec(&cfg, t)
	if err != nil {
		return nil, err
	}

	input, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("binpress: read input: %w", err)
	}
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}
	if uint64(len(input)) > container.MaxPayloadSize {
		return nil, fmt.Errorf("%w: input is %d bytes", ErrSizeRange, len(input))
	}

	data, res, err := press(input, c, t)
	if err != nil {
		return nil, err
	}
	res.StubPath = cfg.stubPath
	res.DataPath = cfg.dataPath

	var g errgroup.Group
	if cfg.dataPath != "" {
		g.Go(func() error {
			return writeOutput(cfg.dataPath, data, 0o644)
		})
	}
	if cfg.stubPath != "" {
		g.Go(func() error {
			out := make([]byte, 0, len(stub)+len(data))
			out = append(out, stub...)
			out = append(out, data...)
			return writeOutput(cfg.stubPath, out, 0o755)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// press runs one compression pass and renders the container bytes.
func press(input []byte, c codec.Codec, t target.Triple) ([]byte, *Result, error) {
	payload, err := c.Compress(input)
	if err != nil {
		return nil, nil, fmt.Errorf("binpress: compress: %w", err)
	}
	if len(payload) == 0 {
		return nil, nil, ErrEmptyPayload
	}
	if uint64(len(payload)) > container.MaxPayloadSize {
		return nil, nil, fmt.Errorf("%w: payload is %d bytes", ErrSizeRange, len(payload))
	}

	key := dlx.CacheKey(payload)
	hdr := container.Header{
		CompressedSize:   uint64(len(payload)),
		UncompressedSize: uint64(len(input)),
		CacheKey:         key,
		Platform:         t.Platform,
		Arch:             t.Arch,
		Libc:             t.Libc,
	}
	data, err := container.Encode(hdr, payload)
	if err != nil {
		return nil, nil, err
	}

	return data, &Result{
		UncompressedSize: hdr.UncompressedSize,
		CompressedSize:   hdr.CompressedSize,
		CacheKey:         key,
		Codec:            c.Name(),
		Target:           t,
	}, nil
}

// resolveCodec applies the --quality override against the target's stub
// codec. Data-only outputs may use any codec; stubs can only decompress the
// one compiled into them.
func resolveCodec(cfg *config, t target.Triple) (codec.Codec, error) {
	native := codec.ForPlatform(t.Platform)
	if cfg.codecName == "" {
		return native, nil
	}
	c, err := codec.ByName(cfg.codecName)
	if err != nil {
		return nil, err
	}
	if cfg.stubPath != "" && c.Name() != native.Name() {
		return nil, fmt.Errorf("%w: %s stubs use %s, not %s", ErrCodecMismatch, t, native.Name(), c.Name())
	}
	return c, nil
}

// writeOutput writes a whole output file, failing on short writes.
func writeOutput(path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("binpress: write %s: %w", path, err)
	}
	return nil
}
