// Package version carries build metadata stamped in by the linker:
//
//	go build -ldflags "-X github.com/dkoosis/faildiff/internal/version.Version=v1.2.0"
package version

import "fmt"

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"     // Default value if not built with LDFLAGS
	CommitHash = "unknown" // Default value
	BuildDate  = "unknown" // Default value
)

// String is the one-line version banner.
func String() string {
	return fmt.Sprintf("faildiff %s (commit %s, built %s)", Version, CommitHash, BuildDate)
}
