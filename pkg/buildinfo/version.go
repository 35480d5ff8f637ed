// Package buildinfo holds the version stamped into occupancy binaries.
//
// The variables are set with ldflags:
//
//	go build -ldflags "-X github.com/matzehuels/occupancy/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/matzehuels/occupancy/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/matzehuels/occupancy/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information as three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}

// UserAgent identifies occupancy to remote booking services.
func UserAgent() string {
	if len(Commit) >= 7 && Commit != "none" {
		return fmt.Sprintf("occupancy/%s (%s)", Version, Commit[:7])
	}
	return "occupancy/" + Version
}
