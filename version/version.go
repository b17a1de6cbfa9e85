// Package version reports build metadata for the gerrit-hooks binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Binary is the name of the command and of the wrappers' exec target.
const Binary = "gerrit-hooks"

// Set with -ldflags "-X github.com/grovetools/gerrit-hooks/version.Version=..." at release time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Info holds the build metadata.
type Info struct {
	Binary    string `json:"binary"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

// GetInfo returns the build metadata. Binaries built with `go install`
// carry no ldflags, so the module version and VCS stamp fill the gaps.
func GetInfo() Info {
	info := Info{
		Binary:    Binary,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildInfo(&info, bi)
	}
	return info
}

func fillFromBuildInfo(info *Info, bi *debug.BuildInfo) {
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "none" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		}
	}
}

// String renders the metadata for `gerrit-hooks version`.
func (i Info) String() string {
	return fmt.Sprintf(
		"%s %s\nCommit:\t\t%s\nBuild Date:\t%s\nGo Version:\t%s\nPlatform:\t%s",
		i.Binary, i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform,
	)
}
