package dlx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/meigma/binpress/target"
)

// Write stores a decompressed binary under the entry directory for key and
// writes its metadata record. Both files land via a temp file and atomic
// rename, so concurrent stubs racing to populate the same entry never expose
// a partial write; losing the rename race to a writer of identical content
// counts as success.
//
// Errors are reported, never fatal: an unwritable home directory must leave
// the caller free to fall back to temp-file execution.
func Write(key string, bin []byte, t target.Triple, meta Metadata) (string, error) {
	dir := EntryDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dlx: create cache dir: %w", err)
	}

	final := filepath.Join(dir, BinaryName(t.Platform, t.Arch))
	if err := publish(dir, final, bin, 0o755); err != nil {
		return "", fmt.Errorf("dlx: write binary: %w", err)
	}

	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("dlx: encode metadata: %w", err)
	}
	raw = append(raw, '\n')
	if err := publish(dir, filepath.Join(dir, metadataName), raw, 0o644); err != nil {
		return "", fmt.Errorf("dlx: write metadata: %w", err)
	}
	return final, nil
}

// publish writes data to a temp file in dir and renames it over final, so a
// reader never observes partial content under the final name.
func publish(dir, final string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, final); err != nil {
		if _, statErr := os.Stat(final); statErr == nil {
			// A concurrent writer got there first with the same
			// content-addressed bytes.
			_ = os.Remove(tmpPath)
			return nil
		}
		_ = os.Remove(tmpPath)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// ReadMetadata loads the metadata record for a cache key, primarily for
// diagnostics and tests.
func ReadMetadata(key string) (Metadata, error) {
	raw, err := os.ReadFile(filepath.Join(EntryDir(key), metadataName))
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("dlx: decode metadata: %w", err)
	}
	return meta, nil
}
