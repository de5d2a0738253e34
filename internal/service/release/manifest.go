package release

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gmw-project/vendor-krypton/internal/config"
	"github.com/gmw-project/vendor-krypton/internal/logger"
	"github.com/gmw-project/vendor-krypton/internal/manifest"
)

// ManifestOptions are inputs accepted by the standalone manifest entry point.
type ManifestOptions struct {
	// ConfigPath is the optional path to the release settings YAML file.
	// Unlike a build run, manifest generation always requires the file:
	// it carries the release identity the documents publish.
	ConfigPath string
	// Device is the device codename. Falls back to the settings file, then
	// to the KOSP_BUILD environment variable.
	Device string
	// OutputDir is the directory scanned for release packages. Defaults to
	// the product output directory under the working tree.
	OutputDir string
	// Incremental asks for the delta manifest.
	Incremental bool
	// Both additionally asks for the full manifest.
	Both bool
	// BuildDateUTC overrides the manifest build date (seconds since epoch).
	BuildDateUTC int64
}

// RunManifest generates release manifests for packages already sitting in an
// output directory, without building anything. This is the recovery path for
// re-publishing a release whose manifests were lost or wrong.
func RunManifest(ctx context.Context, opts *ManifestOptions) error {
	ctx = logger.WithName(ctx, "krypton-release")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	device := resolveDevice(&Options{Device: opts.Device}, cfg)
	if device == "" {
		return errDeviceRequired
	}

	sourceDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve working directory: %w", err)
	}

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Join(sourceDir, "out", "target", "product", device)
	}

	cfg.JSONDir = resolvePath(sourceDir, cfg.JSONDir)

	out, err := manifest.NewGenerator(cfg).Generate(ctx, &manifest.Request{
		OutputDir:    outputDir,
		Device:       device,
		Incremental:  opts.Incremental,
		Both:         opts.Both,
		BuildDateUTC: opts.BuildDateUTC,
	})
	if err != nil {
		logger.ErrorKV(ctx, "Manifest generation failed", "error", err)
		return err
	}

	if out.IncrementalPath != "" {
		fmt.Printf("%s Incremental manifest: %s\n", cyan("•"), yellow(out.IncrementalPath))
	}

	if out.FullPath != "" {
		fmt.Printf("%s Full manifest: %s\n", cyan("•"), yellow(out.FullPath))
	}

	fmt.Printf("%s Manifests written for %s\n", green("✓"), yellow(device))

	return nil
}
