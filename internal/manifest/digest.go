package manifest

import (
	//nolint:gosec // MD5 is part of the published manifest format, not a security control.
	"crypto/md5"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// digests computes hex MD5 and SHA-512 of the file in a single read pass.
func digests(path string) (md5Sum, sha512Sum string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to open %q: %w", path, err)
	}

	defer file.Close()

	//nolint:gosec // See the import note: legacy clients verify MD5.
	md5Hash := md5.New()
	shaHash := sha512.New()

	if _, err = io.Copy(io.MultiWriter(md5Hash, shaHash), file); err != nil {
		return "", "", fmt.Errorf("failed to checksum %q: %w", path, err)
	}

	return hex.EncodeToString(md5Hash.Sum(nil)), hex.EncodeToString(shaHash.Sum(nil)), nil
}

// sha512Digest computes the hex SHA-512 of the file.
func sha512Digest(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %q: %w", path, err)
	}

	defer file.Close()

	shaHash := sha512.New()

	if _, err = io.Copy(shaHash, file); err != nil {
		return "", fmt.Errorf("failed to checksum %q: %w", path, err)
	}

	return hex.EncodeToString(shaHash.Sum(nil)), nil
}
