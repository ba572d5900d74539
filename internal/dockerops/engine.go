package dockerops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"

	"enr/internal/common/errs"
	"enr/internal/common/request"
	clog "enr/utils/log" //custom log
)

// EngineLauncher talks to the Docker Engine API directly instead of going
// through a runtime binary.
type EngineLauncher struct {
	cli    apiClient
	Stdout io.Writer
	Stderr io.Writer
}

func NewEngineLauncher(stdout, stderr io.Writer) (*EngineLauncher, error) {
	cli, err := NewDockerClient()
	if err != nil {
		return nil, errs.New(errs.Launch, errs.TagRuntimeUnavailable,
			fmt.Errorf("failed to create docker client: %w", err))
	}
	return &EngineLauncher{cli: cli, Stdout: stdout, Stderr: stderr}, nil
}

func (l *EngineLauncher) Close() error {
	return l.cli.Close()
}

func (l *EngineLauncher) Launch(ctx context.Context, spec request.LaunchSpec) (Result, error) {
	if _, err := l.cli.Ping(ctx); err != nil {
		return Result{}, errs.New(errs.Launch, errs.TagRuntimeUnavailable,
			fmt.Errorf("docker engine unreachable: %w", err))
	}

	if spec.Replace && spec.Name != "" {
		if err := RemoveContainer(ctx, l.cli, spec.Name); err != nil {
			return Result{}, launchFailed(err)
		}
	}

	image := normalizeImageRef(spec.Image)
	if err := PrepareImage(ctx, l.cli, image); err != nil {
		return Result{}, launchFailed(fmt.Errorf("image prepare error: %w", err))
	}

	exposed, bindings, err := BuildPortConfig(spec.Ports)
	if err != nil {
		return Result{}, launchFailed(fmt.Errorf("port config error: %w", err))
	}

	containerID, err := CreateContainer(ctx, l.cli, image, spec, exposed, bindings)
	if err != nil {
		return Result{}, launchFailed(err)
	}
	clog.Info("Container created", "containerID", containerID)

	res := Result{ContainerID: containerID}
	if spec.Detach {
		return l.start(ctx, res)
	}
	return l.run(ctx, res)
}

// start leaves the container running after the tool exits.
func (l *EngineLauncher) start(ctx context.Context, res Result) (Result, error) {
	if err := l.cli.ContainerStart(ctx, res.ContainerID, types.ContainerStartOptions{}); err != nil {
		l.failCreateTask(res.ContainerID)
		return res, launchFailed(fmt.Errorf("failed to start container: %w", err))
	}

	status, err := GetContainerStatus(ctx, l.cli, res.ContainerID)
	if err != nil {
		l.failCreateTask(res.ContainerID)
		return res, launchFailed(fmt.Errorf("failed to get container status: %w", err))
	} else if status != "running" {
		res.Stdout, res.Stderr = l.collectLogs(ctx, res.ContainerID)
		l.failCreateTask(res.ContainerID)
		return res, launchFailed(fmt.Errorf("container %s is not running, status: %s: %s",
			res.ContainerID, status, strings.TrimSpace(res.Stderr)))
	}

	clog.Info("Container started", "containerID", res.ContainerID)
	return res, nil
}

// run blocks until the container stops, streaming its output, and removes it
// afterwards.
func (l *EngineLauncher) run(ctx context.Context, res Result) (Result, error) {
	defer l.failCreateTask(res.ContainerID)

	// Registered before start so a fast exit is not missed.
	waitCh, waitErrCh := l.cli.ContainerWait(ctx, res.ContainerID, container.WaitConditionNextExit)

	if err := l.cli.ContainerStart(ctx, res.ContainerID, types.ContainerStartOptions{}); err != nil {
		return res, launchFailed(fmt.Errorf("failed to start container: %w", err))
	}

	var stdout, stderr bytes.Buffer
	if err := l.streamLogs(ctx, res.ContainerID, io.MultiWriter(&stdout, orDiscard(l.Stdout)), io.MultiWriter(&stderr, orDiscard(l.Stderr))); err != nil && ctx.Err() == nil {
		clog.Warn("Log stream ended", "containerID", res.ContainerID, "err", err)
	}
	res.Stdout, res.Stderr = stdout.String(), stderr.String()

	if ctx.Err() != nil {
		return res, l.interrupt(ctx, res.ContainerID)
	}

	select {
	case body := <-waitCh:
		res.ExitCode = int(body.StatusCode)
		if body.Error != nil && body.Error.Message != "" {
			return res, launchFailed(fmt.Errorf("wait error: %s", body.Error.Message))
		}
		if body.StatusCode != 0 {
			return res, errs.Newf(errs.Launch, errs.TagLaunchFailed,
				"container exited with status %d: %s", body.StatusCode, strings.TrimSpace(res.Stderr))
		}
		return res, nil
	case err := <-waitErrCh:
		if ctx.Err() != nil {
			return res, l.interrupt(ctx, res.ContainerID)
		}
		return res, launchFailed(fmt.Errorf("wait error: %w", err))
	case <-ctx.Done():
		return res, l.interrupt(ctx, res.ContainerID)
	}
}

func (l *EngineLauncher) streamLogs(ctx context.Context, containerID string, stdout, stderr io.Writer) error {
	reader, err := l.cli.ContainerLogs(ctx, containerID, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("failed to attach logs: %w", err)
	}
	defer reader.Close()

	_, err = stdcopy.StdCopy(stdout, stderr, reader)
	return err
}

func (l *EngineLauncher) collectLogs(ctx context.Context, containerID string) (string, string) {
	reader, err := l.cli.ContainerLogs(ctx, containerID, types.ContainerLogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		clog.Debug("No logs", "containerID", containerID, "err", err)
		return "", ""
	}
	defer reader.Close()

	var stdout, stderr bytes.Buffer
	stdcopy.StdCopy(&stdout, &stderr, reader)
	return stdout.String(), stderr.String()
}

// interrupt stops the container on a fresh context since ctx is already done.
func (l *EngineLauncher) interrupt(ctx context.Context, containerID string) error {
	timeout := interruptGrace
	stopCtx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	defer cancel()

	if err := l.cli.ContainerStop(stopCtx, containerID, &timeout); err != nil {
		clog.Warn("Failed to stop container", "containerID", containerID, "err", err)
	}
	return errs.New(errs.Launch, errs.TagInterrupted, ctx.Err())
}

func (l *EngineLauncher) failCreateTask(containerID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := RemoveContainer(ctx, l.cli, containerID); err != nil {
		clog.Error("Failed to remove container", "containerID", containerID, "err", err)
	}
}

func launchFailed(err error) error {
	return errs.New(errs.Launch, errs.TagLaunchFailed, err)
}
