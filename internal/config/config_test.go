package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields, defaulting, and URL validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing version.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Missing branch.
	cfg = &Config{
		Version: "2.5",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Bad mirror host.
	cfg = &Config{
		Version:      "2.5",
		Branch:       "A12",
		OneDriveHost: "not a url",
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay; defaults filled.
	cfg = &Config{
		Version: "2.5",
		Branch:  "A12",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultJSONDir, cfg.JSONDir)
	require.Equal(t, DefaultSourceforgeHost, cfg.SourceforgeHost)
	require.Equal(t, DefaultOneDriveHost, cfg.OneDriveHost)
	require.Equal(t, DefaultTargetFilesSubdir, cfg.TargetFilesSubdir)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	cfg := &Config{
		Version: "2.5",
		Branch:  "A12",
		Device:  "sunfish",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.Version, loaded.Version)
	require.Equal(t, cfg.Branch, loaded.Branch)
	require.Equal(t, cfg.Device, loaded.Device)
	require.Equal(t, DefaultJSONDir, loaded.JSONDir)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_MissingFile verifies a clear error when the settings file does not exist.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDefault checks that defaults-only settings carry no release identity.
func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.Empty(t, cfg.Version)
	require.Empty(t, cfg.Branch)
	require.Equal(t, DefaultJSONDir, cfg.JSONDir)
	require.Equal(t, DefaultKeyDir, cfg.KeyDir)
	require.Equal(t, DefaultTargetFilesSubdir, cfg.TargetFilesSubdir)
}
