package dockerops

import (
	"context"

	"enr/internal/common/request"
)

// Result is what a launch produced. For run mode the output is whatever the
// container printed until it stopped.
type Result struct {
	ContainerID string
	ExitCode    int
	Stdout      string
	Stderr      string
}

// Launcher starts nginx for a LaunchSpec. One attempt, no retries. Errors are
// *errs.ErrorDetail with Code errs.Launch.
type Launcher interface {
	Launch(ctx context.Context, spec request.LaunchSpec) (Result, error)
}

func hostNetwork(spec request.LaunchSpec) bool {
	return spec.Network == "host"
}
