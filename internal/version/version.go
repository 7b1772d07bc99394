package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags "-X github.com/longkey1/clippyai/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the build description of the running binary.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Short returns only the version number.
func Short() string {
	return Version
}

// Info returns the full build description.
func Info() string {
	b := Current()
	return fmt.Sprintf("clippy %s\n  commit: %s\n  built:  %s\n  go:     %s %s",
		b.Version, b.Commit, b.BuildTime, b.GoVersion, b.Platform)
}
