package dockerops

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/samber/lo"

	"enr/internal/common/errs"
	"enr/internal/common/request"
	clog "enr/utils/log" //custom log
)

// How long a runtime gets to exit after being interrupted before it is killed.
const interruptGrace = 10 * time.Second

// CLILauncher runs the container through a docker compatible binary
// (docker, podman, nerdctl).
type CLILauncher struct {
	Stdout io.Writer
	Stderr io.Writer
}

func NewCLILauncher(stdout, stderr io.Writer) *CLILauncher {
	return &CLILauncher{Stdout: stdout, Stderr: stderr}
}

// BuildRunArgs returns the runtime arguments (without the binary) for spec.
func BuildRunArgs(spec request.LaunchSpec) []string {
	args := []string{"run", lo.Ternary(spec.Detach, "-d", "--rm")}
	if spec.Name != "" {
		args = append(args, "--name", spec.Name)
	}
	if spec.Network != "" {
		args = append(args, "--network", spec.Network)
	}
	// Published ports are meaningless on the host network.
	if !hostNetwork(spec) {
		args = append(args, lo.FlatMap(spec.Ports, func(pm request.PortMapping, _ int) []string {
			return []string{"-p", publishArg(pm)}
		})...)
	}
	args = append(args,
		"-v", fmt.Sprintf("%s:%s:ro", spec.ConfigPath, spec.MountPath),
		spec.Image,
	)
	return args
}

func publishArg(pm request.PortMapping) string {
	if pm.HostIP != "" {
		return fmt.Sprintf("%s:%s:%s", pm.HostIP, pm.HostPort, pm.ContainerPort)
	}
	return fmt.Sprintf("%s:%s", pm.HostPort, pm.ContainerPort)
}

func (l *CLILauncher) Launch(ctx context.Context, spec request.LaunchSpec) (Result, error) {
	bin, err := exec.LookPath(spec.Runtime)
	if err != nil {
		return Result{}, errs.Newf(errs.Launch, errs.TagRuntimeUnavailable,
			"container runtime %q not found: %v", spec.Runtime, err)
	}

	if spec.Replace && spec.Name != "" {
		l.remove(ctx, bin, spec.Name)
	}

	args := BuildRunArgs(spec)
	clog.Debug("Launching container", "runtime", bin, "args", strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = io.MultiWriter(&stdout, orDiscard(l.Stdout))
	cmd.Stderr = io.MultiWriter(&stderr, orDiscard(l.Stderr))
	// An interrupted foreground `run` forwards the signal to nginx, so the
	// container stops and --rm cleans it up.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = interruptGrace

	runErr := cmd.Run()

	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if spec.Detach {
		res.ContainerID = strings.TrimSpace(res.Stdout)
	}

	if ctx.Err() != nil {
		return res, errs.New(errs.Launch, errs.TagInterrupted, ctx.Err())
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return res, errs.Newf(errs.Launch, errs.TagLaunchFailed,
				"%s exited with status %d: %s", spec.Runtime, exitErr.ExitCode(), strings.TrimSpace(res.Stderr))
		}
		return res, errs.New(errs.Launch, errs.TagLaunchFailed,
			fmt.Errorf("failed to run %s: %w", spec.Runtime, runErr))
	}

	clog.Info("Runtime finished", "runtime", spec.Runtime, "container", lo.Ternary(res.ContainerID != "", res.ContainerID, spec.Name))
	return res, nil
}

// remove deletes a container left over from an earlier run with the same
// name. It usually does not exist, so failures are only logged.
func (l *CLILauncher) remove(ctx context.Context, bin, name string) {
	out, err := exec.CommandContext(ctx, bin, "rm", "-f", name).CombinedOutput()
	if err != nil {
		clog.Debug("Nothing to replace", "container", name, "err", err, "output", strings.TrimSpace(string(out)))
		return
	}
	clog.Info("Removed existing container", "container", name)
}

func orDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
