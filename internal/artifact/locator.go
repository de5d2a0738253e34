package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// FindLatest scans dir for regular files matching pattern whose kind equals
// kind and returns the most recent one. The boolean result reports whether a
// matching archive exists at all: an empty scan is a normal outcome, not an
// error. The directory itself must exist, callers validate that up front.
func FindLatest(dir, pattern string, kind Kind) (Archive, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Archive{}, false, fmt.Errorf("failed to scan directory %q: %w", dir, err)
	}

	var (
		latest Archive
		found  bool
	)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		matched, err := filepath.Match(pattern, name)
		if err != nil {
			return Archive{}, false, fmt.Errorf("failed to match pattern %q: %w", pattern, err)
		}

		if !matched || KindOf(name) != kind {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return Archive{}, false, fmt.Errorf("failed to stat %q: %w", name, err)
		}

		candidate := Archive{
			Path:    filepath.Join(dir, name),
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Kind:    kind,
		}

		if !found || candidate.After(latest) {
			latest = candidate
			found = true
		}
	}

	return latest, found, nil
}
