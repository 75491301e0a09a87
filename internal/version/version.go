// Package version carries build metadata injected at link time:
//
//	go build -ldflags "-X .../internal/version.Version=v1.2.3"
package version

import "fmt"

var (
	// Version is the release version of the stacking server.
	Version = "dev"
	// GitSHA is the git commit SHA.
	GitSHA = "unknown"
	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// String returns a single human-readable version line.
func String() string {
	return fmt.Sprintf("%s (%s, built %s)", Version, GitSHA, BuildTime)
}
