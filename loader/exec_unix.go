//go:build !windows

package loader

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// execBinary replaces the current process with path, handing over argv and
// the environment unchanged. The wrapped program sees the same invocation
// the stub received, argv[0] included.
func execBinary(path string) error {
	if err := unix.Exec(path, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("exec %s: %w", path, err)
	}
	return nil
}
