package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gmw-project/vendor-krypton/internal/artifact"
	"github.com/gmw-project/vendor-krypton/internal/build"
	"github.com/gmw-project/vendor-krypton/internal/config"
	"github.com/gmw-project/vendor-krypton/internal/history"
	"github.com/gmw-project/vendor-krypton/internal/logger"
	"github.com/gmw-project/vendor-krypton/internal/manifest"
	"github.com/gmw-project/vendor-krypton/internal/plan"
)

// defaultVariant is the lunch variant used when none is requested.
const defaultVariant = "userdebug"

// knownVariants are the build variants the platform's lunch command accepts.
var knownVariants = map[string]struct{}{
	"user":      {},
	"userdebug": {},
	"eng":       {},
}

var (
	errDeviceRequired     = errors.New("device could not be resolved from flags, settings, or environment")
	errUnknownVariant     = errors.New("unknown build variant")
	errWipeWithoutHistory = errors.New("wiping history requires a history directory")
	errNoArchiveToSign    = errors.New("no target-files archive to sign")
	errNoArchiveToRotate  = errors.New("no target-files archive to rotate")
)

// Options are inputs accepted by the release entry point.
type Options struct {
	// ConfigPath is the optional path to the release settings YAML file.
	ConfigPath string
	// Device is the device codename. Falls back to the settings file, then
	// to the KOSP_BUILD environment variable.
	Device string
	// Variant is the lunch variant (user, userdebug, eng).
	Variant string
	// SourceDir is the ROM source tree root. Defaults to the working directory.
	SourceDir string
	// OutputDir overrides the product output directory.
	OutputDir string
	// TargetFilesDir overrides where target-files archives are picked up.
	TargetFilesDir string
	// HistoryDir enables incremental builds against the archives stored there.
	HistoryDir string
	// BuildBoth builds the full package alongside the incremental one.
	BuildBoth bool
	// Sign re-signs each built target with release keys.
	Sign bool
	// JSON generates release manifests after the build.
	JSON bool
	// Fastboot additionally builds the fastboot package.
	Fastboot bool
	// BootImage additionally builds the standalone boot image.
	BootImage bool
	// Clean runs an installclean before the first target.
	Clean bool
	// WipeHistory empties the history directory before rotating into it.
	WipeHistory bool
	// GApps builds the bundled-apps flavor.
	GApps bool
}

// runner holds the resolved state for a single release execution.
// It is intentionally unexported—call Run(ctx, Options) from callers.
type runner struct {
	opts           *Options
	cfg            *config.Config
	builder        build.Builder
	signer         build.Signer
	device         string
	variant        string
	sourceDir      string
	outputDir      string
	targetFilesDir string
	keyDir         string

	plan              plan.Plan
	signedTargetFiles string
	signedPackage     string
	rotated           string
	manifests         *manifest.Output
}

// Run executes the release pipeline and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "krypton-release")

	r, err := newRunner(ctx, opts)
	if err != nil {
		return err
	}

	if err = r.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Release run failed", "error", err)
		return err
	}

	logger.Info(ctx, "Release run completed")

	return nil
}

// newRunner resolves settings, device, and directories, and validates the
// inputs that must fail fast before any build work starts.
func newRunner(ctx context.Context, opts *Options) (*runner, error) {
	cfg, err := loadSettings(ctx, opts)
	if err != nil {
		return nil, err
	}

	r := &runner{opts: opts, cfg: cfg}

	if r.device = resolveDevice(opts, cfg); r.device == "" {
		return nil, errDeviceRequired
	}

	r.variant = opts.Variant
	if r.variant == "" {
		r.variant = defaultVariant
	}

	if _, ok := knownVariants[r.variant]; !ok {
		return nil, fmt.Errorf("%q: %w", r.variant, errUnknownVariant)
	}

	if r.sourceDir = opts.SourceDir; r.sourceDir == "" {
		if r.sourceDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to resolve working directory: %w", err)
		}
	}

	if r.outputDir = opts.OutputDir; r.outputDir == "" {
		r.outputDir = filepath.Join(r.sourceDir, "out", "target", "product", r.device)
	}

	if r.targetFilesDir = opts.TargetFilesDir; r.targetFilesDir == "" {
		r.targetFilesDir = filepath.Join(r.outputDir, cfg.TargetFilesSubdir)
	}

	r.keyDir = resolvePath(r.sourceDir, cfg.KeyDir)

	// Manifests land next to the tree, not wherever the tool was started.
	cfg.JSONDir = resolvePath(r.sourceDir, cfg.JSONDir)

	return r, r.validate()
}

// validate applies the fail-fast input checks.
func (r *runner) validate() error {
	if r.opts.WipeHistory && r.opts.HistoryDir == "" {
		return errWipeWithoutHistory
	}

	if r.opts.HistoryDir != "" {
		if _, err := os.Stat(r.opts.HistoryDir); err != nil {
			return fmt.Errorf("failed to stat history directory: %w", err)
		}
	}

	if r.opts.Sign {
		if _, err := os.Stat(r.keyDir); err != nil {
			return fmt.Errorf("failed to stat signing key directory: %w", err)
		}
	}

	return nil
}

// Run executes the pipeline for this runner instance:
// 1) Resolve the build plan against archive history.
// 2) Clean staging output if requested.
// 3) Build each planned target, signing after each one when requested.
// 4) Rotate the resulting target-files archive into history.
// 5) Generate release manifests.
// 6) Print the operator summary.
func (r *runner) Run(ctx context.Context) error {
	started := time.Now()

	resolved, err := plan.Resolve(ctx, plan.Intent{
		HistoryDir: r.opts.HistoryDir,
		BuildBoth:  r.opts.BuildBoth,
		Fastboot:   r.opts.Fastboot,
		BootImage:  r.opts.BootImage,
	})
	if err != nil {
		return fmt.Errorf("resolve build plan: %w", err)
	}

	r.plan = resolved
	r.ensureCollaborators()

	if r.opts.Clean {
		logger.Info(ctx, "Cleaning staging output")

		if err = r.builder.Build(ctx, plan.TargetInstallClean); err != nil {
			return fmt.Errorf("clean staging output: %w", err)
		}
	}

	if err = r.buildTargets(ctx); err != nil {
		return err
	}

	if err = r.rotateHistory(ctx); err != nil {
		return fmt.Errorf("rotate history: %w", err)
	}

	if err = r.generateManifests(ctx); err != nil {
		return fmt.Errorf("generate manifests: %w", err)
	}

	r.printSummary(time.Since(started))

	return nil
}

// ensureCollaborators wires the real builder and signer unless a test
// injected fakes. The builder is created only after planning because the
// incremental base is part of its environment.
func (r *runner) ensureCollaborators() {
	if r.builder == nil {
		r.builder = &build.ExecBuilder{
			SourceDir:        r.sourceDir,
			Device:           r.device,
			Variant:          r.variant,
			PriorTargetFiles: r.plan.PriorTargetFiles,
			GApps:            r.opts.GApps,
		}
	}

	if r.signer == nil {
		r.signer = &build.ExecSigner{
			SourceDir: r.sourceDir,
			Device:    r.device,
			Variant:   r.variant,
			OutputDir: r.outputDir,
		}
	}
}

// buildTargets walks the plan in order, aborting on the first failure.
func (r *runner) buildTargets(ctx context.Context) error {
	for _, target := range r.plan.Targets {
		if err := r.builder.Build(ctx, target); err != nil {
			return fmt.Errorf("build plan aborted: %w", err)
		}

		if !r.opts.Sign {
			continue
		}

		if err := r.signLatest(ctx); err != nil {
			return fmt.Errorf("sign target %q: %w", target, err)
		}
	}

	return nil
}

// signLatest signs the newest target-files archive the build just produced.
func (r *runner) signLatest(ctx context.Context) error {
	archive, found, err := artifact.FindLatest(r.targetFilesDir, artifact.TargetFilesPattern, artifact.KindFull)
	if err != nil {
		return err
	}

	if !found {
		return fmt.Errorf("%q: %w", r.targetFilesDir, errNoArchiveToSign)
	}

	signed, err := r.signer.Sign(ctx, archive.Path, r.keyDir)
	if err != nil {
		return err
	}

	r.signedTargetFiles = signed.TargetFiles
	r.signedPackage = signed.Package

	return nil
}

// rotateHistory copies the run's target-files archive into the history
// directory. The signed archive wins over the raw one when both exist, since
// future incrementals must diff against what devices actually received.
func (r *runner) rotateHistory(ctx context.Context) error {
	if r.opts.HistoryDir == "" {
		return nil
	}

	source := r.signedTargetFiles

	if source == "" {
		archive, found, err := artifact.FindLatest(r.targetFilesDir, artifact.TargetFilesPattern, artifact.KindFull)
		if err != nil {
			return err
		}

		if !found {
			return fmt.Errorf("%q: %w", r.targetFilesDir, errNoArchiveToRotate)
		}

		source = archive.Path
	}

	rotated, err := history.Rotate(ctx, r.opts.HistoryDir, source, r.opts.WipeHistory)
	if err != nil {
		return err
	}

	r.rotated = rotated

	return nil
}

// generateManifests emits the release documents matching what was built.
func (r *runner) generateManifests(ctx context.Context) error {
	if !r.opts.JSON {
		return nil
	}

	out, err := manifest.NewGenerator(r.cfg).Generate(ctx, &manifest.Request{
		OutputDir:   r.outputDir,
		Device:      r.device,
		Incremental: r.plan.Incremental(),
		Both:        r.plan.Incremental() && r.opts.BuildBoth,
	})
	if err != nil {
		return err
	}

	r.manifests = out

	return nil
}

// loadSettings reads the release settings file. A missing file is tolerated
// with defaults unless manifests were requested, because only manifests need
// the release identity the file carries.
func loadSettings(ctx context.Context, opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)

	switch {
	case err == nil:
		return cfg, nil
	case errors.Is(err, os.ErrNotExist) && !opts.JSON:
		logger.Info(ctx, "No settings file found, continuing with defaults")

		return config.Default(), nil
	default:
		return nil, err
	}
}

// resolveDevice picks the device codename: the explicit flag wins, then the
// settings file, then the build environment.
func resolveDevice(opts *Options, cfg *config.Config) string {
	if opts.Device != "" {
		return opts.Device
	}

	if cfg.Device != "" {
		return cfg.Device
	}

	return os.Getenv(build.EnvDeviceBuild)
}

// resolvePath anchors a relative path at the source tree root.
func resolvePath(sourceDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(sourceDir, path)
}
