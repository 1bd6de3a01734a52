package loader

import "os"

func tempDirs() []string {
	return dedupPaths([]string{os.TempDir()})
}
