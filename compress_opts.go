package binpress

import "github.com/meigma/binpress/target"

// Option configures Compress and Update.
type Option func(*config)

type config struct {
	stubPath  string
	dataPath  string
	triple    target.Triple
	tripleSet bool
	codecName string
}

// WithStubOutput writes a self-extracting binary to path. For Update this
// redirects the repacked stub instead of rewriting it in place.
func WithStubOutput(path string) Option {
	return func(c *config) {
		c.stubPath = path
	}
}

// WithDataOutput writes a standalone container data file to path.
func WithDataOutput(path string) Option {
	return func(c *config) {
		c.dataPath = path
	}
}

// WithTarget selects the packaging target. Defaults to the host triple for
// Compress, and to the triple recorded in the existing container for Update.
func WithTarget(t target.Triple) Option {
	return func(c *config) {
		c.triple = t
		c.tripleSet = true
	}
}

// WithCodec overrides the compression codec by --quality name. Stub outputs
// reject codecs the target's stubs cannot decompress.
func WithCodec(name string) Option {
	return func(c *config) {
		c.codecName = name
	}
}
