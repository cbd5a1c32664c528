// Package version holds build metadata injected via ldflags:
//
//	-X github.com/kailas-cloud/searchgate/internal/version.Version=v1.2.0
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent is the default User-Agent sent by the Go SDK.
func UserAgent() string {
	return "searchgate-go/" + Version
}
