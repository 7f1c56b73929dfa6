// Package buildinfo carries identifiers stamped at build time via -ldflags.
package buildinfo

// Version is set at build time via -ldflags.
var Version = "dev"

// Commit is set at build time via -ldflags.
var Commit = "unknown"

// Short returns a compact build identifier for the window title.
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Long returns version plus commit for the startup log line.
func Long() string {
	s := Short()
	if Commit != "" && Commit != "unknown" && s != Commit {
		return s + " (" + Commit + ")"
	}
	return s
}
