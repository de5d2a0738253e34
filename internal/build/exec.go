package build

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/gmw-project/vendor-krypton/internal/logger"
)

// lunchPrefix is the product prefix all device combos share.
const lunchPrefix = "kosp_"

// Host tools that land on PATH once the build environment is set up.
const (
	signTool = "sign_target_files_apks"
	otaTool  = "ota_from_target_files"
)

// ExecBuilder drives the real build system by spawning a shell per target.
// Each invocation sets up the build environment from scratch, so the helper
// works the same whether or not the operator's shell sourced envsetup.
type ExecBuilder struct {
	// SourceDir is the root of the ROM source tree.
	SourceDir string
	// Device and Variant select the lunch combo, e.g. kosp_sunfish-user.
	Device  string
	Variant string
	// PriorTargetFiles, when set, is exported to the build system so
	// incremental targets know their base archive.
	PriorTargetFiles string
	// GApps switches the build to the bundled-apps flavor.
	GApps bool
}

// Build runs one target to completion, streaming build output to the
// operator's terminal. Build failures abort with the target named; the
// build system's own log tells the rest.
func (b *ExecBuilder) Build(ctx context.Context, target string) error {
	logger.Infof(ctx, "Building target %q for %s", target, b.lunchCombo())

	if err := b.runShell(ctx, buildScript(b.lunchCombo(), target)); err != nil {
		return fmt.Errorf("failed to build target %q: %w", target, err)
	}

	return nil
}

// lunchCombo composes the product-variant string lunch expects.
func (b *ExecBuilder) lunchCombo() string {
	return lunchPrefix + b.Device + "-" + b.Variant
}

// environ extends the parent environment with the build-system variables the
// targets read.
func (b *ExecBuilder) environ() []string {
	env := append(os.Environ(), EnvGAppsBuild+"="+strconv.FormatBool(b.GApps))

	if b.PriorTargetFiles != "" {
		env = append(env, EnvPreviousTargetFiles+"="+b.PriorTargetFiles)
	}

	return env
}

// runShell executes script with bash inside the source tree.
func (b *ExecBuilder) runShell(ctx context.Context, script string) error {
	cmd := exec.CommandContext(ctx, "bash", "-c", script)
	cmd.Dir = b.SourceDir
	cmd.Env = b.environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// buildScript chains environment setup, combo selection, and the target build
// so a single shell carries the state lunch exports.
func buildScript(combo, target string) string {
	return fmt.Sprintf("source build/envsetup.sh && lunch %s && m %s", combo, target)
}

// ExecSigner re-signs archives with the host tools of the same source tree
// the builder compiled them in.
type ExecSigner struct {
	// SourceDir is the root of the ROM source tree.
	SourceDir string
	// Device and Variant select the lunch combo that puts the host tools
	// on PATH.
	Device  string
	Variant string
	// OutputDir receives the signed artifacts.
	OutputDir string
}

// Sign re-signs archivePath with the keys in keyDir and packages the result.
// Both artifacts land in the output directory under fixed names, so a repeat
// signing pass replaces the previous one.
func (s *ExecSigner) Sign(ctx context.Context, archivePath, keyDir string) (Signed, error) {
	signed := Signed{
		TargetFiles: filepath.Join(s.OutputDir, SignedTargetFilesName),
		Package:     filepath.Join(s.OutputDir, SignedPackageName),
	}

	logger.Infof(ctx, "Signing %q with keys from %q", archivePath, keyDir)

	combo := lunchPrefix + s.Device + "-" + s.Variant

	cmd := exec.CommandContext(ctx, "bash", "-c", signScript(combo, keyDir, archivePath, signed.TargetFiles, signed.Package))
	cmd.Dir = s.SourceDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return Signed{}, fmt.Errorf("failed to sign %q: %w", archivePath, err)
	}

	return signed, nil
}

// signScript chains archive re-signing and OTA packaging in one shell, the
// second tool consuming the first one's output.
func signScript(combo, keyDir, archive, signedTargetFiles, signedPackage string) string {
	return fmt.Sprintf(
		"source build/envsetup.sh && lunch %s && %s -o -d %q %q %q && %s -k %q %q %q",
		combo,
		signTool, keyDir, archive, signedTargetFiles,
		otaTool, filepath.Join(keyDir, "releasekey"), signedTargetFiles, signedPackage)
}
