// Package version holds build information set with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/ssvibitha/Health-report-to-recipes/version.GitRelease=v0.3.0"
package version

import "runtime"

var (
	GitRelease    = "dev"
	GitCommit     = "unknown"
	GitCommitDate = "unknown"
	GoInfo        = runtime.Version()
)
