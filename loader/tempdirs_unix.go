//go:build !windows

package loader

import "os"

// tempDirs lists fallback directories for the extracted binary, best first.
// The user's configured temp dir wins; /dev/shm is preferred over /tmp
// because tmpfs-backed extraction avoids disk writes entirely.
func tempDirs() []string {
	dirs := make([]string, 0, 3)
	for _, env := range []string{"TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			dirs = append(dirs, dir)
			break
		}
	}
	dirs = append(dirs, "/dev/shm", "/tmp")
	return dedupPaths(dirs)
}
