package plan

import (
	"context"
	"fmt"

	"github.com/gmw-project/vendor-krypton/internal/artifact"
	"github.com/gmw-project/vendor-krypton/internal/logger"
)

// Build target identifiers understood by the ROM build system.
const (
	// TargetFull produces the flashable full OTA package.
	TargetFull = "kosp"
	// TargetIncremental produces a delta package against a prior target-files archive.
	TargetIncremental = "kosp-incremental"
	// TargetFastboot produces the fastboot-flashable image set.
	TargetFastboot = "kosp-fastboot"
	// TargetBootImage produces the standalone boot image.
	TargetBootImage = "bootimage"
	// TargetInstallClean removes staging output before a build without a full wipe.
	TargetInstallClean = "installclean"
)

// Intent is what the operator asked for, reduced to the inputs planning
// actually depends on.
type Intent struct {
	// HistoryDir holds prior target-files archives. Empty disables
	// incremental planning entirely.
	HistoryDir string
	// BuildBoth keeps the full target in the plan alongside the
	// incremental one instead of replacing it.
	BuildBoth bool
	// Fastboot appends the fastboot package target.
	Fastboot bool
	// BootImage appends the standalone boot image target.
	BootImage bool
}

// Plan is the resolved outcome of one planning pass. It is built once per
// invocation and never mutated afterwards.
type Plan struct {
	// Targets lists build targets in invocation order, without duplicates.
	// Signing, when enabled, runs after each one in this same order.
	Targets []string
	// PriorTargetFiles is the archive an incremental build diffs against.
	// Empty when the run is not incremental.
	PriorTargetFiles string
}

// Incremental reports whether the plan carries an incremental base.
func (p Plan) Incremental() bool {
	return p.PriorTargetFiles != ""
}

// Resolve turns intent into a concrete plan. The base full target always
// opens the plan; a prior archive found in the history directory switches the
// run to the incremental target (or adds it, when both were requested), and
// the fastboot and boot image targets follow in that order. A history
// directory without any prior archive degrades to a plain full build rather
// than failing, and no stale base reference survives into the result.
func Resolve(ctx context.Context, intent Intent) (Plan, error) {
	targets := []string{TargetFull}

	var prior string

	if intent.HistoryDir != "" {
		archive, found, err := artifact.FindLatest(intent.HistoryDir, artifact.TargetFilesPattern, artifact.KindFull)
		if err != nil {
			return Plan{}, fmt.Errorf("failed to inspect history directory: %w", err)
		}

		switch {
		case found && intent.BuildBoth:
			prior = archive.Path
			targets = appendUnique(targets, TargetIncremental)

			logger.Infof(ctx, "Planning full and incremental builds against %q", archive.Name())
		case found:
			prior = archive.Path
			targets = []string{TargetIncremental}

			logger.Infof(ctx, "Planning incremental build against %q", archive.Name())
		default:
			logger.Info(ctx, "No prior target-files archive in history, planning full build only")
		}
	}

	if intent.Fastboot {
		targets = appendUnique(targets, TargetFastboot)
	}

	if intent.BootImage {
		targets = appendUnique(targets, TargetBootImage)
	}

	return Plan{Targets: targets, PriorTargetFiles: prior}, nil
}

// appendUnique keeps the plan free of duplicate targets while preserving
// insertion order.
func appendUnique(targets []string, target string) []string {
	for _, existing := range targets {
		if existing == target {
			return targets
		}
	}

	return append(targets, target)
}
