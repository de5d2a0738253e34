package build

import "context"

// Environment variables the ROM build system reads from the invoking shell.
const (
	// EnvPreviousTargetFiles points incremental targets at the archive they
	// diff against.
	EnvPreviousTargetFiles = "PREVIOUS_TARGET_FILES_PACKAGE"
	// EnvGAppsBuild switches the build to the bundled-apps flavor.
	EnvGAppsBuild = "GAPPS_BUILD"
	// EnvDeviceBuild names the device a release shell session is set up for.
	EnvDeviceBuild = "KOSP_BUILD"
)

// Names given to the artifacts one signing pass writes into the output directory.
const (
	// SignedTargetFilesName is the re-signed target-files archive.
	SignedTargetFilesName = "signed-target_files.zip"
	// SignedPackageName is the flashable OTA package built from the signed archive.
	SignedPackageName = "signed-ota_update.zip"
)

// Builder invokes the ROM build system for one target. A successful build's
// only observable effect is new artifacts in the output directory.
type Builder interface {
	Build(ctx context.Context, target string) error
}

// Signed holds the artifacts one signing pass produces.
type Signed struct {
	// TargetFiles is the signed target-files archive, the input for
	// history rotation.
	TargetFiles string
	// Package is the signed flashable OTA package.
	Package string
}

// Signer re-signs a target-files archive with release keys and packages the
// result as a flashable OTA.
type Signer interface {
	Sign(ctx context.Context, archivePath, keyDir string) (Signed, error)
}
