package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set at release time via -ldflags "-X ...". A plain `go build` leaves them
// empty, in which case Get fills the gaps from the toolchain's stamped build
// info.
var (
	Version    = "dev"
	CommitHash = ""
	BuildTime  = ""
)

// Info describes the running binary.
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get assembles version details, preferring ldflags values over the VCS
// settings recorded in the module build info.
func Get() Info {
	info := Info{
		Version:    Version,
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.CommitHash == "" {
					info.CommitHash = setting.Value
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			}
		}
	}

	if info.CommitHash == "" {
		info.CommitHash = "unknown"
	}
	if info.BuildTime == "" {
		info.BuildTime = "unknown"
	}
	return info
}

// String renders a single line such as
// "pact v0.3.0 (commit 1a2b3c4, built 2026-08-01T10:02:11Z)".
func (i Info) String() string {
	return fmt.Sprintf("pact %s (commit %s, built %s)", i.Version, shortHash(i.CommitHash), i.BuildTime)
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
