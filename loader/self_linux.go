package loader

import (
	"os"
)

// openSelf opens the running stub for reading. /proc/self/exe survives the
// binary being renamed or unlinked after launch, which os.Args[0] does not,
// so it is preferred. The resolved path is only used for diagnostics and
// cache metadata; reads go through the /proc handle.
func openSelf() (string, *os.File, error) {
	if p := os.Getenv(StubPathEnv); p != "" {
		f, err := os.Open(p)
		return p, f, err
	}

	f, err := os.Open("/proc/self/exe")
	if err == nil {
		path, lerr := os.Readlink("/proc/self/exe")
		if lerr != nil {
			path = os.Args[0]
		}
		return path, f, nil
	}

	// Containers occasionally run without /proc mounted.
	path := os.Args[0]
	f, err = os.Open(path)
	return path, f, err
}
