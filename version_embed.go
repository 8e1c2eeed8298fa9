package main

import (
	_ "embed"
	"strings"

	"backdate/cmd"
)

//go:embed VERSION
var releaseVersion string

// A version set with -ldflags "-X backdate/cmd.Version=..." wins over VERSION.
func init() {
	if cmd.Version != "dev" {
		return
	}
	if v := strings.TrimSpace(releaseVersion); v != "" {
		cmd.Version = "v" + strings.TrimPrefix(v, "v")
	}
	cmd.ApplyVersion()
}
