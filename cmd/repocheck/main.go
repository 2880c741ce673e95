package main

import (
	"repocheck/internal/cli"
)

// These variables are populated by the build via -ldflags, e.g.
// -X main.version=v1.2.3 -X main.commit=$(git rev-parse --short HEAD).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	cli.Execute()
}
