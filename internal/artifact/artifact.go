package artifact

import (
	"path/filepath"
	"strings"
	"time"
)

// Kind classifies a release archive.
type Kind int

const (
	// KindFull is a self-contained package flashable on any build.
	KindFull Kind = iota
	// KindIncremental is a delta package applying on top of a known base build.
	KindIncremental
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k == KindIncremental {
		return "incremental"
	}

	return "full"
}

const (
	// TargetFilesPattern matches target-files packages in output and history directories.
	TargetFilesPattern = "*target_files*.zip"

	// ReleasePattern matches flashable release zips in the output directory.
	ReleasePattern = "KOSP-*.zip"

	// IncrementalMarker distinguishes incremental archives from full ones by file name.
	IncrementalMarker = "incremental"

	// MetadataEntry is the properties record embedded in every OTA package.
	MetadataEntry = "META-INF/com/android/metadata"

	// PreBuildIncrementalKey names the base build an incremental package applies on top of.
	PreBuildIncrementalKey = "pre-build-incremental"

	// PostTimestampKey is the UTC build timestamp (in seconds) recorded at packaging time.
	PostTimestampKey = "post-timestamp"
)

// Archive describes one discovered archive on disk.
type Archive struct {
	// Path is the absolute or caller-relative location of the archive file.
	Path string
	// Size is the archive length in bytes.
	Size int64
	// ModTime is the file modification time used to order archives.
	ModTime time.Time
	// Kind reports whether the archive is a full or an incremental package.
	Kind Kind
}

// Name returns the base file name of the archive.
func (a Archive) Name() string {
	return filepath.Base(a.Path)
}

// After reports whether a should replace other as the latest archive:
// the greater modification time wins, equal times resolve to the
// lexically last path so the choice stays deterministic.
func (a Archive) After(other Archive) bool {
	if a.ModTime.After(other.ModTime) {
		return true
	}

	if a.ModTime.Equal(other.ModTime) {
		return a.Path > other.Path
	}

	return false
}

// KindOf reports which kind the file name belongs to.
func KindOf(name string) Kind {
	if strings.Contains(strings.ToLower(name), IncrementalMarker) {
		return KindIncremental
	}

	return KindFull
}
