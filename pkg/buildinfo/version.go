// Package buildinfo reports which dashgrid build is running.
//
// Release builds stamp the variables with ldflags:
//
//	go build -ldflags "-X github.com/shaikhimroz/new-nfm-sub000/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/shaikhimroz/new-nfm-sub000/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/shaikhimroz/new-nfm-sub000/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped binaries installed with go install fall back to the module
// version and VCS revision recorded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Stamped at link time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func init() {
	if bi, ok := debug.ReadBuildInfo(); ok {
		Version, Commit, Date = resolve(bi, Version, Commit, Date)
	}
}

// resolve fills the unstamped values from the toolchain's build info.
func resolve(bi *debug.BuildInfo, version, commit, date string) (string, string, string) {
	if version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && commit == "none":
			commit = s.Value
		case s.Key == "vcs.time" && date == "unknown":
			date = s.Value
		}
	}
	return version, commit, date
}

// String returns the multi-line form printed by the version command.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra template behind --version.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
