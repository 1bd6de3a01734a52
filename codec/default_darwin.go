//go:build darwin

package codec

// Default returns the codec compiled into stubs for this target.
func Default() Codec { return Zstd{} }
