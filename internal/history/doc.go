// Package history maintains the rotating directory of target-files archives
// that incremental builds diff against. Each rotation copies the newest
// archive in under a minute-stamped name; wiping prior entries is an explicit
// caller decision, never implied.
package history
