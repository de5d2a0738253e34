// Package manifest produces the JSON release documents update clients poll
// for. A full manifest describes the self-contained OTA package with MD5 and
// SHA-512 checksums; an incremental manifest describes the delta package with
// SHA-512 only plus the pre-build identifier chaining it to its base build.
package manifest
