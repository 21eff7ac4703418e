// Package buildinfo holds version information injected at build time via ldflags.
//
//	go build -ldflags "-X github.com/watchfire-io/runlog/internal/buildinfo.Version=v0.3.0"
package buildinfo

var (
	Version    = "dev"
	Codename   = "unknown"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// UserAgent identifies this build to upload backends, e.g. "runlog/v0.3.0".
func UserAgent() string {
	return "runlog/" + Version
}
