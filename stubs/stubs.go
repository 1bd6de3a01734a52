// Package stubs provides the pre-built self-extracting loader binaries that
// binpress prepends to compressed payloads.
//
// The release build compiles cmd/binstub once per supported target triple
// and places the results under embed/ before this package is built, so a
// released binpress can package for any target regardless of host. A
// development checkout usually has no embedded stubs; set BINPRESS_STUB_DIR
// to a directory of binstub-<triple> files to supply them at run time.
package stubs

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meigma/binpress/target"
)

//go:embed all:embed
var embedded embed.FS

// DirEnv names the environment variable that overrides the embedded stub
// set with a directory of binstub-<triple> files.
const DirEnv = "BINPRESS_STUB_DIR"

// ErrNoStub is returned when no stub exists for a target triple.
var ErrNoStub = errors.New("stubs: no stub for target")

// Name returns the file name a stub for the given triple is stored under.
func Name(t target.Triple) string {
	name := "binstub-" + t.String()
	if t.Platform == target.PlatformWin32 {
		name += ".exe"
	}
	return name
}

// For returns the loader binary for the given target triple. A BINPRESS_STUB_DIR
// override is consulted before the embedded set.
func For(t target.Triple) ([]byte, error) {
	if dir := os.Getenv(DirEnv); dir != "" {
		b, err := os.ReadFile(filepath.Join(dir, Name(t)))
		if err == nil {
			return b, nil
		}
	}
	b, err := embedded.ReadFile("embed/" + Name(t))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoStub, t)
	}
	return b, nil
}
