// Package version reports build information injected at link time.
package version

// Set via -ldflags "-X github.com/rshade/reminderin/pkg/version.version=...".
//
//nolint:gochecknoglobals // Link-time injected build metadata.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// GetVersion returns the release version, or "dev" for local builds.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

