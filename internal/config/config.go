package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the release settings shared by every krypton-release run.
type Config struct {
	// Version is the Krypton platform version published in release manifests.
	Version string `yaml:"version"`
	// Branch is the release branch label used to build download URLs (e.g. "A12").
	Branch string `yaml:"branch"`
	// Device is the default device codename when none is passed on the command line.
	Device string `yaml:"device,omitempty"`
	// JSONDir is the directory release manifests are written under, one subdirectory per device.
	JSONDir string `yaml:"json_dir"`
	// KeyDir is the directory holding the signing keys passed to the signing tools.
	KeyDir string `yaml:"key_dir"`
	// SourceforgeHost is the base URL of the primary download mirror.
	SourceforgeHost string `yaml:"sourceforge_host"`
	// OneDriveHost is the base URL of the secondary download mirror.
	OneDriveHost string `yaml:"onedrive_host"`
	// TargetFilesSubdir is the path under the output directory where the
	// platform build drops target-files packages.
	TargetFilesSubdir string `yaml:"target_files_subdir"`
}

const (
	// DefaultConfigFilename is the default filename for release settings.
	DefaultConfigFilename = "krypton-release.yaml"

	// DefaultJSONDir is where release manifests land unless configured otherwise.
	DefaultJSONDir = "ota"

	// DefaultKeyDir is the default signing key directory.
	DefaultKeyDir = "certs"

	// DefaultSourceforgeHost is the primary mirror serving release zips.
	DefaultSourceforgeHost = "https://sourceforge.net/projects/kosp/files"

	// DefaultOneDriveHost is the secondary mirror serving release zips.
	DefaultOneDriveHost = "https://onedrive.kosp.org"

	// DefaultTargetFilesSubdir is where the platform build writes
	// target-files packages relative to the product output directory.
	DefaultTargetFilesSubdir = "obj/PACKAGING/target_files_intermediates"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errVersionRequired is returned when the platform version is missing.
	errVersionRequired = errors.New("platform version must be provided")
	// errBranchRequired is returned when the release branch is missing.
	errBranchRequired = errors.New("release branch must be provided")
)

// Default returns settings with every optional field at its default and the
// release identity (version, branch) left empty. Runs that never touch
// manifests work off these; manifest generation requires a saved file.
func Default() *Config {
	cfg := new(Config)
	fillDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting,
// filling defaults for everything that has one.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Version == "" {
		return errVersionRequired
	}

	if cfg.Branch == "" {
		return errBranchRequired
	}

	fillDefaults(cfg)

	if _, err := url.ParseRequestURI(cfg.SourceforgeHost); err != nil {
		return fmt.Errorf("invalid sourceforge host: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.OneDriveHost); err != nil {
		return fmt.Errorf("invalid onedrive host: %w", err)
	}

	return nil
}

// fillDefaults sets every optional field that was left empty.
func fillDefaults(cfg *Config) {
	if cfg.JSONDir == "" {
		cfg.JSONDir = DefaultJSONDir
	}

	if cfg.KeyDir == "" {
		cfg.KeyDir = DefaultKeyDir
	}

	if cfg.SourceforgeHost == "" {
		cfg.SourceforgeHost = DefaultSourceforgeHost
	}

	if cfg.OneDriveHost == "" {
		cfg.OneDriveHost = DefaultOneDriveHost
	}

	if cfg.TargetFilesSubdir == "" {
		cfg.TargetFilesSubdir = DefaultTargetFilesSubdir
	}
}
