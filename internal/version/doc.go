// Package version exposes build metadata of the alarm binaries and the
// shared `version` subcommand.
package version
