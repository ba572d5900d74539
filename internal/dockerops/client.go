package dockerops

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	specs "github.com/opencontainers/image-spec/specs-go/v1"
)

// apiClient is the part of *client.Client the engine launcher uses.
type apiClient interface {
	Ping(ctx context.Context) (types.Ping, error)
	ImageList(ctx context.Context, options types.ImageListOptions) ([]types.ImageSummary, error)
	ImagePull(ctx context.Context, ref string, options types.ImagePullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig, platform *specs.Platform, containerName string) (container.ContainerCreateCreatedBody, error)
	ContainerStart(ctx context.Context, containerID string, options types.ContainerStartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.ContainerWaitOKBody, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options types.ContainerLogsOptions) (io.ReadCloser, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStop(ctx context.Context, containerID string, timeout *time.Duration) error
	ContainerRemove(ctx context.Context, containerID string, options types.ContainerRemoveOptions) error
	Close() error
}

var _ apiClient = (*client.Client)(nil)

// NewDockerClient creates a new Docker API client using environment variables.
func NewDockerClient() (*client.Client, error) {
	return client.NewClientWithOpts(
		client.FromEnv,                     // DOCKER_HOST, DOCKER_CERT_PATH, ...
		client.WithAPIVersionNegotiation(), // talk to older daemons too
	)
}

func GetContainerStatus(
	ctx context.Context,
	cli apiClient,
	containerID string,
) (string, error) {

	containerJSON, err := cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return "", fmt.Errorf("inspect error: %w", err)
	}
	if containerJSON.ContainerJSONBase == nil || containerJSON.State == nil {
		return "", fmt.Errorf("inspect error: no state for %s", containerID)
	}

	return containerJSON.State.Status, nil
}
