package loader

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeTemp writes bin to a private executable temp file, trying each
// candidate directory in order. The file is owner-only: temp directories are
// world-readable and the binary may not be.
func writeTemp(bin []byte) (string, error) {
	var lastErr error
	for _, dir := range tempDirs() {
		path, err := writeTempIn(dir, bin)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no usable temp directory")
	}
	return "", lastErr
}

func writeTempIn(dir string, bin []byte) (string, error) {
	f, err := os.CreateTemp(dir, "binpress-*")
	if err != nil {
		return "", err
	}
	path := f.Name()

	if _, err := f.Write(bin); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Chmod(0o700); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// dedupPaths drops later duplicates while preserving order.
func dedupPaths(dirs []string) []string {
	seen := make(map[string]struct{}, len(dirs))
	out := dirs[:0]
	for _, d := range dirs {
		if d == "" {
			continue
		}
		clean := filepath.Clean(d)
		if _, ok := seen[clean]; ok {
			continue
		}
		seen[clean] = struct{}{}
		out = append(out, clean)
	}
	return out
}
