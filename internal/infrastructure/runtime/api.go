package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/client"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// APIRuntime talks to the Docker Engine API directly.
type APIRuntime struct {
	cli *client.Client
}

// NewAPIRuntime connects using DOCKER_HOST and friends unless opts say otherwise.
func NewAPIRuntime(opts ...client.Opt) (*APIRuntime, error) {
	if len(opts) == 0 {
		opts = []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("create docker client: %w", err)
	}
	return &APIRuntime{cli: cli}, nil
}

// Info queries /info.
func (r *APIRuntime) Info(ctx context.Context) (ports.RuntimeInfo, error) {
	info, err := r.cli.Info(ctx)
	if err != nil {
		return ports.RuntimeInfo{}, fmt.Errorf("%w: %v", domain.ErrRuntimeUnavailable, err)
	}
	return ports.RuntimeInfo{ServerVersion: info.ServerVersion}, nil
}

// RunningContainers lists running containers by name, without the leading slash.
func (r *APIRuntime) RunningContainers(ctx context.Context) ([]string, error) {
	list, err := r.cli.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRuntimeUnavailable, err)
	}

	var names []string
	for _, c := range list {
		for _, name := range c.Names {
			names = append(names, strings.TrimPrefix(name, "/"))
		}
	}
	return names, nil
}

// Close releases the client's idle connections.
func (r *APIRuntime) Close() error {
	return r.cli.Close()
}

var _ ports.ContainerRuntime = (*APIRuntime)(nil)
