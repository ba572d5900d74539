package dockerops

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"

	"enr/internal/common/request"
	clog "enr/utils/log" //custom log
)

// PortMappings parses a publish spec such as "80:80" or "127.0.0.1:8080:80".
func PortMappings(publish string) ([]request.PortMapping, error) {
	mappings, err := nat.ParsePortSpec(publish)
	if err != nil {
		return nil, fmt.Errorf("invalid port mapping %q: %w", publish, err)
	}

	result := make([]request.PortMapping, 0, len(mappings))
	for _, m := range mappings {
		result = append(result, request.PortMapping{
			HostIP:        m.Binding.HostIP,
			HostPort:      m.Binding.HostPort,
			ContainerPort: m.Port.Port(),
		})
	}
	return result, nil
}

func BuildPortConfig(portMappings []request.PortMapping) (nat.PortSet, nat.PortMap, error) {
	exposedPorts := nat.PortSet{}
	portBindings := nat.PortMap{}

	for _, pm := range portMappings {
		port, err := nat.NewPort("tcp", pm.ContainerPort)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid container port %q: %w", pm.ContainerPort, err)
		}
		exposedPorts[port] = struct{}{}
		portBindings[port] = append(portBindings[port], nat.PortBinding{
			HostIP:   pm.HostIP,
			HostPort: pm.HostPort,
		})
	}

	return exposedPorts, portBindings, nil
}

// normalizeImageRef adds the implicit :latest so the reference can be
// compared with RepoTags.
func normalizeImageRef(image string) string {
	if strings.Contains(image, "@") {
		return image
	}
	if i := strings.LastIndex(image, ":"); i > strings.LastIndex(image, "/") {
		return image
	}
	return image + ":latest"
}

func PrepareImage(ctx context.Context, cli apiClient, image string) error {
	images, err := cli.ImageList(ctx, types.ImageListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}

	imageExists := false
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if tag == image {
				imageExists = true
				break
			}
		}
		if imageExists {
			break
		}
	}

	if !imageExists {
		clog.Info("Image not found locally. Pulling...", "image", image)

		reader, err := cli.ImagePull(ctx, image, types.ImagePullOptions{})
		if err != nil {
			return fmt.Errorf("failed to pull image: %w", err)
		}
		defer reader.Close()
		if _, err := io.Copy(io.Discard, reader); err != nil {
			return fmt.Errorf("failed to pull image: %w", err)
		}
		clog.Debug("Image pulled successfully", "image", image)
	}

	return nil
}

// CreateContainer creates (but does not start) the nginx container with the
// rendered config bind-mounted read-only.
func CreateContainer(
	ctx context.Context,
	cli apiClient,
	image string,
	spec request.LaunchSpec,
	exposed nat.PortSet,
	bindings nat.PortMap,
) (string, error) {

	config := &container.Config{
		Image: image,
	}
	hostConfig := &container.HostConfig{
		Binds:       []string{fmt.Sprintf("%s:%s:ro", spec.ConfigPath, spec.MountPath)},
		NetworkMode: container.NetworkMode(spec.Network),
	}
	if !hostNetwork(spec) {
		config.ExposedPorts = exposed
		hostConfig.PortBindings = bindings
	}

	resp, err := cli.ContainerCreate(
		ctx,
		config,
		hostConfig,
		nil,       // networkingConfig
		nil,       // platform
		spec.Name, // container name
	)
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	for _, w := range resp.Warnings {
		clog.Warn("Docker warning", "container", resp.ID, "warning", w)
	}

	return resp.ID, nil
}
