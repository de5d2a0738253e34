// Package artifact locates release archives on disk and reads the build
// metadata embedded in them. Archives are ordered by modification time with
// a lexical tie-break, so repeated scans of the same directory always agree
// on which package is the latest.
package artifact
