// Package buildinfo reports which blokdust build is running.
//
// Release builds stamp the variables through ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/blokdust/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/blokdust/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/blokdust/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds (go install, go run) fall back to the module and VCS data
// the Go toolchain embeds in the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Placeholders used until a build stamps real values.
const (
	devVersion = "dev"
	noCommit   = "none"
	noDate     = "unknown"
)

var (
	// Version is the semantic version, e.g. "v0.3.0".
	Version = devVersion

	// Commit is the git commit SHA.
	Commit = noCommit

	// Date is the build timestamp.
	Date = noDate
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info is a resolved set of build values.
type Info struct {
	Version string
	Commit  string
	Date    string
}

// Get returns the stamped values, filling placeholders from the embedded
// module and VCS settings where the binary carries them.
func Get() Info {
	info := Info{Version: Version, Commit: Commit, Date: Date}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == devVersion && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch {
		case s.Key == "vcs.revision" && info.Commit == noCommit:
			info.Commit = s.Value
		case s.Key == "vcs.time" && info.Date == noDate:
			info.Date = s.Value
		}
	}
	return info
}

// String returns the build information, one field per line.
func String() string {
	i := Get()
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	i := Get()
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", i.Version, i.Commit, i.Date)
}
