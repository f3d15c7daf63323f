package main

import (
	"os"

	"github.com/callscape/callscape/internal/cli"
	"github.com/callscape/callscape/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
