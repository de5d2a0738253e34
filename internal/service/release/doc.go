// Package release orchestrates one end-to-end release run: planning targets
// against archive history, driving the build system and signing tools,
// rotating the produced target-files archive into history, and emitting the
// release manifests.
//
// The pipeline treats "latest file by modification time" in the output and
// history directories as its state. Two runs sharing either directory race
// each other between that check and the use of the file, so invoke one
// release at a time per tree.
package release
