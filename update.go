package binpress

import (
	"bytes"
	"fmt"
	"os"

	"github.com/meigma/binpress/container"
	"github.com/meigma/binpress/target"
)

// Update repacks an existing self-extracting stub with a freshly compressed
// payload read from inputPath. The stub's layout is otherwise untouched: the
// bytes before the marker are preserved verbatim and exactly one container
// remains no matter how many times the stub is repacked.
//
// By default the stub is rewritten in place; WithStubOutput redirects the
// result. WithTarget overrides the triple recorded in the existing header,
// which otherwise carries over.
func Update(stubPath, inputPath string, opts ...Option) (*Result, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.dataPath != "" {
		return nil, fmt.Errorf("%w: update mode cannot write a data file", ErrNoOutput)
	}

	stub, err := os.ReadFile(stubPath)
	if err != nil {
		return nil, fmt.Errorf("binpress: read stub: %w", err)
	}

	idx := container.Index(stub)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotCompressed, stubPath)
	}
	rest := stub[idx+container.MarkerLen:]
	if container.Index(rest) >= 0 {
		return nil, fmt.Errorf("binpress: %s contains more than one container marker", stubPath)
	}

	// Update always produces a stub; default to rewriting in place. Set
	// before codec resolution so the stub/codec compatibility check binds.
	if cfg.stubPath == "" {
		cfg.stubPath = stubPath
	}

	t, err := updateTarget(&cfg, rest)
	if err != nil {
		return nil, err
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

	outPath := cfg.stubPath
	out := make([]byte, 0, idx+len(data))
	out = append(out, stub[:idx]...)
	out = append(out, data...)
	if err := writeOutput(outPath, out, outputMode(stubPath)); err != nil {
		return nil, err
	}

	res.StubPath = outPath
	return res, nil
}

// updateTarget recovers the triple from the existing container header unless
// an explicit target was given. A corrupt header is only an error when the
// triple cannot be supplied another way.
func updateTarget(cfg *config, rest []byte) (target.Triple, error) {
	if cfg.tripleSet {
		return cfg.triple, nil
	}
	hdr, err := container.DecodeHeader(bytes.NewReader(rest))
	if err != nil {
		return target.Triple{}, fmt.Errorf("binpress: existing container header: %w", err)
	}
	return target.Triple{Platform: hdr.Platform, Arch: hdr.Arch, Libc: hdr.Libc}, nil
}

// outputMode preserves the original stub's permission bits when possible.
func outputMode(stubPath string) os.FileMode {
	if info, err := os.Stat(stubPath); err == nil {
		return info.Mode().Perm()
	}
	return 0o755
}
