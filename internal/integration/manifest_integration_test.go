package integration

import (
	"context"
	"crypto/md5" //nolint:gosec // Verifying the published manifest format.
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gmw-project/vendor-krypton/internal/config"
	"github.com/gmw-project/vendor-krypton/internal/manifest"
	"github.com/gmw-project/vendor-krypton/internal/service/release"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for the local Go 1.21 toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

// TestManifest_FullPackageOnly runs the standalone manifest path against a
// tree holding a single full package and verifies the written document field
// by field, including independently computed checksums.
func TestManifest_FullPackageOnly(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, config.Save(config.DefaultConfigFilename, &config.Config{
		Version: "2.5",
		Branch:  "A12",
	}))

	outputDir := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(outputDir, 0o750))

	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i)
	}

	const packageName = "KOSP-device-20240101-1200.zip"
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, packageName), payload, 0o600))

	err := release.RunManifest(context.Background(), &release.ManifestOptions{
		ConfigPath:   config.DefaultConfigFilename,
		Device:       "device",
		OutputDir:    outputDir,
		BuildDateUTC: 1704110400,
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "ota", "device", "ota.json"))
	require.NoError(t, err)

	var doc manifest.FullManifest
	require.NoError(t, json.Unmarshal(data, &doc))

	md5Sum := md5.Sum(payload) //nolint:gosec // See the import note.
	sha512Sum := sha512.Sum512(payload)

	require.Equal(t, "2.5", doc.Version)
	require.Equal(t, int64(1704110400000), doc.Date)
	require.Equal(t, packageName, doc.FileName)
	require.Equal(t, packageName, doc.Filename)
	require.Equal(t, "3000", doc.FileSize)
	require.Equal(t, "3000", doc.Filesize)
	require.Equal(t, hex.EncodeToString(md5Sum[:]), doc.MD5)
	require.Equal(t, hex.EncodeToString(sha512Sum[:]), doc.SHA512)
	require.Equal(t,
		"https://sourceforge.net/projects/kosp/files/A12/device/"+packageName+"/download", doc.URL)
	require.Equal(t, doc.URL, doc.DownloadSources.Sourceforge)
	require.Equal(t,
		"https://onedrive.kosp.org/A12/device/"+packageName, doc.DownloadSources.OneDrive)

	// Only the full manifest was requested, so no delta document exists.
	require.NoFileExists(t, filepath.Join(dir, "ota", "device", manifest.IncrementalManifestName))
}

// TestManifest_RequiresSettingsIdentity verifies that manifest generation
// refuses to run off a settings file missing the release identity.
func TestManifest_RequiresSettingsIdentity(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	require.NoError(t, os.WriteFile(config.DefaultConfigFilename, []byte("json_dir: ota\n"), 0o600))

	err := release.RunManifest(context.Background(), &release.ManifestOptions{
		ConfigPath: config.DefaultConfigFilename,
		Device:     "device",
		OutputDir:  dir,
	})
	require.Error(t, err)
}
