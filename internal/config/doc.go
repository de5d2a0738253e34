// Package config defines release settings for the krypton-release helper and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type pins the platform version, release branch, download mirror
// hosts and the directories the pipeline reads from and writes to.
package config
