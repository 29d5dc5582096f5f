package version

import (
	"fmt"
	"runtime/debug"
)

const modulePath = "github.com/mydehq/metamatch"

var (
	// These variables are set via -ldflags during build
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Get returns the version, falling back to debug.BuildInfo when metamatch
// was installed with go install or pulled in as a dependency.
func Get() string {
	if Version != "dev" {
		return Version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	if info.Main.Path == modulePath && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}
	return Version
}

// String returns a formatted version string
func String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Get(), Commit, Date)
}
