package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/nextcloud/ncp-activation/internal/core/domain"
)

// Adapter implements ports.ContainerStatusProbe using the Docker SDK
type Adapter struct {
	cli client.APIClient
}

// NewAdapter creates a Docker adapter talking to the local daemon socket
// (or DOCKER_HOST when set). The connection is made lazily on first use.
func NewAdapter(opts ...client.Opt) (*Adapter, error) {
	opts = append([]client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}, opts...)
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return &Adapter{cli: cli}, nil
}

// Probe returns the daemon version and every container, including stopped ones.
func (a *Adapter) Probe(ctx context.Context) (domain.ProbeResult, error) {
	version, err := a.cli.ServerVersion(ctx)
	if err != nil {
		return domain.ProbeResult{}, fmt.Errorf("failed to get docker version: %w", err)
	}

	containers, err := a.cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return domain.ProbeResult{}, fmt.Errorf("failed to list containers: %w", err)
	}

	result := domain.ProbeResult{
		RuntimeVersion: orUnknown(version.Version),
		Containers:     make([]domain.ContainerSummary, 0, len(containers)),
	}
	for _, c := range containers {
		result.Containers = append(result.Containers, toSummary(c))
	}
	return result, nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

func toSummary(c types.Container) domain.ContainerSummary {
	names := c.Names
	if names == nil {
		names = []string{}
	}
	return domain.ContainerSummary{
		ImageID:   orUnknown(c.ImageID),
		Image:     orUnknown(c.Image),
		Status:    orUnknown(c.Status),
		State:     orUnknown(c.State),
		CreatedAt: c.Created,
		Names:     names,
	}
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}
