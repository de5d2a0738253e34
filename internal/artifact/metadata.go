package artifact

import (
	"archive/zip"
	"bufio"
	"errors"
	"fmt"
	"strings"
)

var (
	errNoMetadataEntry   = errors.New("archive carries no metadata entry")
	errMetadataKeyAbsent = errors.New("metadata key is absent")
)

// ReadMetadataValue extracts the value of key from the metadata record
// embedded in the archive at zipPath. The record is a plain key=value file,
// one pair per line. A missing entry or key is an error: packages produced
// by the OTA tooling always carry both.
func ReadMetadataValue(zipPath, key string) (string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive %q: %w", zipPath, err)
	}

	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != MetadataEntry {
			continue
		}

		return scanMetadata(file, zipPath, key)
	}

	return "", fmt.Errorf("%q: %w", zipPath, errNoMetadataEntry)
}

func scanMetadata(file *zip.File, zipPath, key string) (string, error) {
	record, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open metadata in %q: %w", zipPath, err)
	}

	defer record.Close()

	scanner := bufio.NewScanner(record)
	for scanner.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}

		if name == key {
			return value, nil
		}
	}

	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read metadata in %q: %w", zipPath, err)
	}

	return "", fmt.Errorf("%q in %q: %w", key, zipPath, errMetadataKeyAbsent)
}
