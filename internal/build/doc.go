// Package build wraps the external ROM build system and signing tools behind
// two small interfaces, keeping the release pipeline testable with fakes
// while the real implementations shell out target by target.
package build
