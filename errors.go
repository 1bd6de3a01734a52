package binpress

import (
	"errors"

	"github.com/meigma/binpress/container"
)

// Sentinel errors.
var (
	// ErrNoOutput is returned when Compress is called without requesting
	// a stub or data output.
	ErrNoOutput = errors.New("binpress: no output requested")

	// ErrNotCompressed is returned when an input carries no container
	// marker.
	ErrNotCompressed = errors.New("binpress: not a compressed binary")

	// ErrEmptyInput is returned for zero-length input files; an empty
	// payload cannot be represented in the container header.
	ErrEmptyInput = errors.New("binpress: input file is empty")

	// ErrEmptyPayload is returned when a backend produces no output.
	ErrEmptyPayload = errors.New("binpress: compression produced no data")

	// ErrMarkerInStub is returned when a stub binary contains the data
	// marker and would shadow its own payload.
	ErrMarkerInStub = errors.New("binpress: stub contains the container marker")

	// ErrCodecMismatch is returned when --quality selects a codec the
	// target's stubs cannot decompress.
	ErrCodecMismatch = errors.New("binpress: codec not supported by target stub")
)

// ErrSizeRange is re-exported so callers can match oversized inputs and
// corrupt headers with one sentinel.
var ErrSizeRange = container.ErrSizeRange
