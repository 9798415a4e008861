// Package version holds build metadata injected via ldflags.
package version

var (
	// Version is the semantic version of the build.
	Version = "0.3.0"
	// Commit is the git commit the binary was built from.
	Commit = ""
	// BuildDate is the build timestamp.
	BuildDate = ""
)
