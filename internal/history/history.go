package history

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gmw-project/vendor-krypton/internal/logger"
)

// rotationStampLayout renders the fresh suffix appended to every rotated copy.
const rotationStampLayout = "20060102-1504"

// suffixPattern matches rotation stamps and other trailing numeric runs left
// behind by earlier rotations, so stamps never pile up on one name.
var suffixPattern = regexp.MustCompile(`(-\d+)+$`)

// now is swapped out by tests that need a fixed rotation stamp.
var now = time.Now

// Rotate copies the archive at archivePath into historyDir under a
// stamp-disambiguated name and returns the destination path. When wipeFirst
// is set, all existing contents of historyDir are removed before the copy;
// the archive is verified to exist before anything destructive happens.
// Stamps carry minute resolution, so a second rotation of the same archive
// within one minute overwrites the first copy.
func Rotate(ctx context.Context, historyDir, archivePath string, wipeFirst bool) (string, error) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to stat archive %q: %w", archivePath, err)
	}

	if wipeFirst {
		if err = wipe(historyDir); err != nil {
			return "", err
		}

		logger.Infof(ctx, "Wiped history directory %q", historyDir)
	}

	destPath := filepath.Join(historyDir, rotatedName(filepath.Base(archivePath), now()))

	if err = copyFile(archivePath, destPath, info.Mode().Perm()); err != nil {
		return "", err
	}

	logger.Infof(ctx, "Rotated %q into %q", archivePath, destPath)

	return destPath, nil
}

// rotatedName strips any prior rotation suffix from base and appends a fresh
// stamp, keeping the file extension in place.
func rotatedName(base string, at time.Time) string {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = suffixPattern.ReplaceAllString(stem, "")

	return stem + "-" + at.Format(rotationStampLayout) + ext
}

// wipe removes every entry of dir, leaving the directory itself in place.
func wipe(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read history directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		if err = os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove history entry %q: %w", entry.Name(), err)
		}
	}

	return nil
}

// copyFile duplicates src at dest with the given permissions. The source is
// left untouched so the output directory keeps its archive for manifests.
func copyFile(src, dest string, perm os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", src, err)
	}

	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", dest, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		out.Close()

		return fmt.Errorf("failed to copy %q to %q: %w", src, dest, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %q: %w", dest, err)
	}

	return nil
}
