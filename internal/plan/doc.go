// Package plan decides which build targets a release run invokes. Planning
// reads the archive history exactly once, so the decision between a full and
// an incremental build is fixed before the first target starts.
package plan
