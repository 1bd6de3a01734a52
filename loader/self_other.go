//go:build !linux

package loader

import (
	"os"
)

// openSelf opens the running stub for reading, honoring the explicit
// override before asking the runtime for the executable path.
func openSelf() (string, *os.File, error) {
	if p := os.Getenv(StubPathEnv); p != "" {
		f, err := os.Open(p)
		return p, f, err
	}

	path, err := os.Executable()
	if err != nil {
		return "", nil, err
	}
	f, err := os.Open(path)
	return path, f, err
}
