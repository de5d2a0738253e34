package manifest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gmw-project/vendor-krypton/internal/artifact"
	"github.com/gmw-project/vendor-krypton/internal/config"
	"github.com/gmw-project/vendor-krypton/internal/logger"
)

const (
	// buildDateProp is the build-date property (UTC seconds) recorded by the
	// build system in the device's build.prop.
	buildDateProp = "ro.build.date.utc"

	// millisPerSecond converts property seconds to the manifest's millisecond date.
	millisPerSecond = 1000

	// defaultDirPermissions applies to manifest directories created per device.
	defaultDirPermissions = 0o750
)

var (
	errBothWithoutIncremental = errors.New("full and incremental manifests requested without the incremental flag")
	errDeviceRequired         = errors.New("device is not set")
	errNotADirectory          = errors.New("output path is not a directory")
	errNoFullArchive          = errors.New("no full package in output directory")
	errNoIncrementalArchive   = errors.New("no incremental package in output directory")
	errNoBuildDateProp        = errors.New("build date property is absent")
)

// Request describes one manifest generation pass.
type Request struct {
	// OutputDir is scanned for the newest full and incremental packages.
	OutputDir string
	// Device names the build and the manifest subdirectory.
	Device string
	// Incremental asks for the delta manifest.
	Incremental bool
	// Both additionally asks for the full manifest. Invalid without
	// Incremental.
	Both bool
	// BuildDateUTC overrides the build date (seconds since epoch). Zero
	// means resolve it from the output directory.
	BuildDateUTC int64
}

// Generator writes release manifests for packages found in an output
// directory.
type Generator struct {
	cfg *config.Config
}

// NewGenerator creates a manifest generator backed by the release settings.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg}
}

// Generate validates the request, then writes the requested manifests under
// <json-dir>/<device>/. Invalid flag combinations and an unresolvable device
// fail before any file is touched. A requested manifest whose package is
// missing from the output directory is fatal; the full package is not even
// looked at when only the incremental manifest was requested.
func (g *Generator) Generate(ctx context.Context, req *Request) (*Output, error) {
	if req.Both && !req.Incremental {
		return nil, errBothWithoutIncremental
	}

	if req.Device == "" {
		return nil, errDeviceRequired
	}

	info, err := os.Stat(req.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat output directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%q: %w", req.OutputDir, errNotADirectory)
	}

	manifestDir := filepath.Join(g.cfg.JSONDir, req.Device)
	if err = os.MkdirAll(manifestDir, defaultDirPermissions); err != nil {
		return nil, fmt.Errorf("failed to create manifest directory: %w", err)
	}

	out := new(Output)

	if req.Incremental {
		if out.Incremental, err = g.incremental(ctx, req); err != nil {
			return nil, err
		}

		out.IncrementalPath = filepath.Join(manifestDir, IncrementalManifestName)
		if err = writeManifest(out.IncrementalPath, out.Incremental); err != nil {
			return nil, err
		}

		logger.Infof(ctx, "Wrote incremental manifest %q", out.IncrementalPath)

		if !req.Both {
			return out, nil
		}
	}

	if out.Full, err = g.full(ctx, req); err != nil {
		return nil, err
	}

	out.FullPath = filepath.Join(manifestDir, FullManifestName)
	if err = writeManifest(out.FullPath, out.Full); err != nil {
		return nil, err
	}

	logger.Infof(ctx, "Wrote full manifest %q", out.FullPath)

	return out, nil
}

// full describes the newest full package in the output directory.
func (g *Generator) full(ctx context.Context, req *Request) (*FullManifest, error) {
	archive, found, err := artifact.FindLatest(req.OutputDir, artifact.ReleasePattern, artifact.KindFull)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("%q: %w", req.OutputDir, errNoFullArchive)
	}

	md5Sum, sha512Sum, err := digests(archive.Path)
	if err != nil {
		return nil, err
	}

	primary, sources, err := g.downloadSources(req.Device, archive.Name())
	if err != nil {
		return nil, err
	}

	size := strconv.FormatInt(archive.Size, 10)

	return &FullManifest{
		Version:         g.cfg.Version,
		Date:            g.resolveDate(ctx, req, archive),
		URL:             primary,
		DownloadSources: sources,
		Filename:        archive.Name(),
		FileName:        archive.Name(),
		Filesize:        size,
		FileSize:        size,
		MD5:             md5Sum,
		SHA512:          sha512Sum,
	}, nil
}

// incremental describes the newest delta package in the output directory.
// The package must exist and must carry the pre-build identifier naming its
// base build; anything else is a broken artifact.
func (g *Generator) incremental(ctx context.Context, req *Request) (*IncrementalManifest, error) {
	archive, found, err := artifact.FindLatest(req.OutputDir, artifact.ReleasePattern, artifact.KindIncremental)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, fmt.Errorf("%q: %w", req.OutputDir, errNoIncrementalArchive)
	}

	preBuild, err := artifact.ReadMetadataValue(archive.Path, artifact.PreBuildIncrementalKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read pre-build identifier: %w", err)
	}

	sha512Sum, err := sha512Digest(archive.Path)
	if err != nil {
		return nil, err
	}

	primary, sources, err := g.downloadSources(req.Device, archive.Name())
	if err != nil {
		return nil, err
	}

	return &IncrementalManifest{
		Version:             g.cfg.Version,
		Date:                g.resolveDate(ctx, req, archive),
		URL:                 primary,
		DownloadSources:     sources,
		FileName:            archive.Name(),
		FileSize:            strconv.FormatInt(archive.Size, 10),
		SHA512:              sha512Sum,
		PreBuildIncremental: preBuild,
	}, nil
}

// resolveDate picks the build date in epoch milliseconds. An explicit
// override wins; otherwise the device's build.prop is consulted, then the
// timestamp recorded inside the package, and as a last resort the archive's
// modification time. The fallbacks matter for manifests generated outside a
// build tree, where build.prop does not exist.
func (g *Generator) resolveDate(ctx context.Context, req *Request, archive artifact.Archive) int64 {
	if req.BuildDateUTC > 0 {
		return req.BuildDateUTC * millisPerSecond
	}

	if utc, err := readBuildDateProp(filepath.Join(req.OutputDir, "system", "build.prop")); err == nil {
		return utc * millisPerSecond
	}

	if stamp, err := artifact.ReadMetadataValue(archive.Path, artifact.PostTimestampKey); err == nil {
		if utc, err := strconv.ParseInt(stamp, 10, 64); err == nil {
			return utc * millisPerSecond
		}
	}

	logger.Warnf(ctx, "Build date not recorded anywhere, falling back to modification time of %q", archive.Name())

	return archive.ModTime.Unix() * millisPerSecond
}

// downloadSources builds the mirror links for a released file and returns the
// primary download URL alongside them.
func (g *Generator) downloadSources(device, fileName string) (string, DownloadSources, error) {
	sourceforge, err := mirrorURL(g.cfg.SourceforgeHost, g.cfg.Branch, device, fileName, "download")
	if err != nil {
		return "", DownloadSources{}, err
	}

	onedrive, err := mirrorURL(g.cfg.OneDriveHost, g.cfg.Branch, device, fileName)
	if err != nil {
		return "", DownloadSources{}, err
	}

	return sourceforge, DownloadSources{OneDrive: onedrive, Sourceforge: sourceforge}, nil
}

// mirrorURL appends path segments to a mirror host, normalizing slashes.
func mirrorURL(host string, segments ...string) (string, error) {
	parsed, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("failed to parse mirror host %q: %w", host, err)
	}

	parsed.Path = path.Join(append([]string{parsed.Path}, segments...)...)

	return parsed.String(), nil
}

// readBuildDateProp extracts the build-date property from a build.prop file.
func readBuildDateProp(path string) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %q: %w", path, err)
	}

	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok || name != buildDateProp {
			continue
		}

		utc, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse %s: %w", buildDateProp, err)
		}

		return utc, nil
	}

	if err = scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %q: %w", path, err)
	}

	return 0, fmt.Errorf("%q: %w", path, errNoBuildDateProp)
}

// writeManifest serializes document as indented JSON.
func writeManifest(path string, document any) error {
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	data = append(data, '\n')

	if err = os.WriteFile(path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("failed to write manifest %q: %w", path, err)
	}

	return nil
}
