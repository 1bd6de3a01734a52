package loader

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// execBinary runs path as a child process; Windows has no execve. Stdio is
// inherited and the child's exit code is forwarded, so the stub is
// transparent to whoever invoked it apart from the extra process.
func execBinary(path string) error {
	cmd := exec.Command(path, os.Args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("exec %s: %w", path, err)
	}
	os.Exit(0)
	return nil
}
