package appctx

import (
	"io"

	"enr/internal/config"
	"enr/internal/dockerops"
)

// LauncherFactory builds a launcher for one run. It is called only when a
// container is actually started, so a dry run never touches the runtime.
type LauncherFactory func() (dockerops.Launcher, error)

type Dependencies struct {
	Config    config.Config
	Stdout    io.Writer
	Stderr    io.Writer
	Launchers map[string]LauncherFactory // keyed by engine name
}
