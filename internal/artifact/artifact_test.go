package artifact

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeFileAt creates a file with the given content and modification time.
func writeFileAt(t *testing.T, dir, name, content string, modTime time.Time) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	require.NoError(t, os.Chtimes(path, modTime, modTime))

	return path
}

// TestKindOf checks that the incremental marker in a file name decides the kind.
func TestKindOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, KindFull, KindOf("KOSP-1.0-sunfish-OFFICIAL-20260102-0304.zip"))
	require.Equal(t, KindIncremental, KindOf("KOSP-1.0-sunfish-incremental-OFFICIAL.zip"))
	require.Equal(t, KindIncremental, KindOf("KOSP-1.0-sunfish-INCREMENTAL-OFFICIAL.zip"))
}

// TestKindString checks the printable names of both kinds.
func TestKindString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "full", KindFull.String())
	require.Equal(t, "incremental", KindIncremental.String())
}

// TestFindLatestEmptyDirectory checks that a scan with no matches reports
// "not found" without an error.
func TestFindLatestEmptyDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, found, err := FindLatest(dir, ReleasePattern, KindFull)
	require.NoError(t, err)
	require.False(t, found)
}

// TestFindLatestMissingDirectory checks that a nonexistent directory is an error.
func TestFindLatestMissingDirectory(t *testing.T) {
	t.Parallel()

	_, _, err := FindLatest(filepath.Join(t.TempDir(), "nope"), ReleasePattern, KindFull)
	require.Error(t, err)
}

// TestFindLatestPicksNewest checks that the greatest modification time wins.
func TestFindLatestPicksNewest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeFileAt(t, dir, "KOSP-1.0-sunfish-old.zip", "old", base)
	newest := writeFileAt(t, dir, "KOSP-1.0-sunfish-new.zip", "new", base.Add(10*time.Minute))
	writeFileAt(t, dir, "KOSP-1.0-sunfish-mid.zip", "mid", base.Add(5*time.Minute))

	archive, found, err := FindLatest(dir, ReleasePattern, KindFull)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, newest, archive.Path)
	require.Equal(t, int64(3), archive.Size)
	require.Equal(t, KindFull, archive.Kind)
}

// TestFindLatestTieBreaksLexically checks that equal modification times
// resolve to the lexically last name.
func TestFindLatestTieBreaksLexically(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	at := time.Now().Add(-time.Hour).Truncate(time.Second)

	writeFileAt(t, dir, "KOSP-1.0-sunfish-a.zip", "a", at)
	last := writeFileAt(t, dir, "KOSP-1.0-sunfish-b.zip", "b", at)

	archive, found, err := FindLatest(dir, ReleasePattern, KindFull)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, last, archive.Path)
}

// TestFindLatestFiltersByKind checks that full and incremental archives
// never shadow each other even when both match the pattern.
func TestFindLatestFiltersByKind(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	full := writeFileAt(t, dir, "KOSP-1.0-sunfish-OFFICIAL.zip", "full", base)
	incremental := writeFileAt(t, dir, "KOSP-1.0-sunfish-incremental-OFFICIAL.zip", "inc", base.Add(time.Minute))

	archive, found, err := FindLatest(dir, ReleasePattern, KindFull)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, full, archive.Path)

	archive, found, err = FindLatest(dir, ReleasePattern, KindIncremental)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, incremental, archive.Path)
}

// TestFindLatestIgnoresDirectoriesAndMismatches checks that directories and
// non-matching names never surface as archives.
func TestFindLatestIgnoresDirectoriesAndMismatches(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	at := time.Now().Truncate(time.Second)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "KOSP-1.0-dir.zip"), 0o750))
	writeFileAt(t, dir, "notes.txt", "n", at)
	want := writeFileAt(t, dir, "KOSP-1.0-sunfish.zip", "z", at)

	archive, found, err := FindLatest(dir, ReleasePattern, KindFull)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, want, archive.Path)
}

// writeOTAZip builds a zip with an optional Android metadata entry.
func writeOTAZip(t *testing.T, path string, metadata string) {
	t.Helper()

	out, err := os.Create(path)
	require.NoError(t, err)

	writer := zip.NewWriter(out)

	payload, err := writer.Create("payload.bin")
	require.NoError(t, err)

	_, err = payload.Write([]byte("payload"))
	require.NoError(t, err)

	if metadata != "" {
		entry, err := writer.Create(MetadataEntry)
		require.NoError(t, err)

		_, err = entry.Write([]byte(metadata))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())
	require.NoError(t, out.Close())
}

// TestReadMetadataValue checks extraction of known keys from the embedded record.
func TestReadMetadataValue(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ota.zip")
	writeOTAZip(t, path, "ota-type=BLOCK\npre-build-incremental=20260101.1530\npost-timestamp=1767280500\n")

	value, err := ReadMetadataValue(path, PreBuildIncrementalKey)
	require.NoError(t, err)
	require.Equal(t, "20260101.1530", value)

	value, err = ReadMetadataValue(path, PostTimestampKey)
	require.NoError(t, err)
	require.Equal(t, "1767280500", value)
}

// TestReadMetadataValueMissingKey checks that an absent key is an error.
func TestReadMetadataValueMissingKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ota.zip")
	writeOTAZip(t, path, "ota-type=BLOCK\n")

	_, err := ReadMetadataValue(path, PreBuildIncrementalKey)
	require.ErrorIs(t, err, errMetadataKeyAbsent)
}

// TestReadMetadataValueMissingEntry checks that a zip without the metadata
// record is an error.
func TestReadMetadataValueMissingEntry(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "plain.zip")
	writeOTAZip(t, path, "")

	_, err := ReadMetadataValue(path, PreBuildIncrementalKey)
	require.ErrorIs(t, err, errNoMetadataEntry)
}

// TestReadMetadataValueNotAZip checks that a non-archive file is an error.
func TestReadMetadataValueNotAZip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.zip")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	_, err := ReadMetadataValue(path, PreBuildIncrementalKey)
	require.Error(t, err)
}

// TestArchiveName checks the base-name helper.
func TestArchiveName(t *testing.T) {
	t.Parallel()

	archive := Archive{Path: filepath.Join("out", "dist", "KOSP-1.0.zip")}
	require.Equal(t, "KOSP-1.0.zip", archive.Name())
}
