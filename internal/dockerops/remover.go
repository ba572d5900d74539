package dockerops

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/client"

	clog "enr/utils/log" //custom log
)

// RemoveContainer forcibly removes a container by ID or name. A container
// that does not exist counts as removed.
func RemoveContainer(
	ctx context.Context,
	cli apiClient,
	containerID string,
) error {
	clog.Debug("Removing container", "container", containerID)

	err := cli.ContainerRemove(ctx, containerID, types.ContainerRemoveOptions{
		Force: true, // running or not
	})
	if client.IsErrNotFound(err) {
		clog.Debug("Container not found", "container", containerID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to remove container %s: %w", containerID, err)
	}

	clog.Info("Container removed", "container", containerID)
	return nil
}
