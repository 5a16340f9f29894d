package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/nuniesmith/fks-main/internal/domain"
	"github.com/nuniesmith/fks-main/internal/ports"
)

// CLIRuntime talks to the daemon through the docker binary.
type CLIRuntime struct {
	runner ports.ProcessRunner
	binary string
}

// NewCLIRuntime builds a runtime adapter over the docker CLI.
func NewCLIRuntime(runner ports.ProcessRunner) *CLIRuntime {
	return &CLIRuntime{runner: runner, binary: "docker"}
}

// Info runs `docker info`. A non-zero exit means the daemon is down or unreachable.
func (r *CLIRuntime) Info(ctx context.Context) (ports.RuntimeInfo, error) {
	res, err := r.runner.Run(ctx, domain.Command{
		Name: r.binary,
		Args: []string{"info", "--format", "{{.ServerVersion}}"},
	})
	if err != nil {
		return ports.RuntimeInfo{}, err
	}
	if !res.Success() {
		return ports.RuntimeInfo{}, fmt.Errorf("%w: %s", domain.ErrRuntimeUnavailable, firstLine(res.Stderr))
	}
	return ports.RuntimeInfo{ServerVersion: strings.TrimSpace(res.Stdout)}, nil
}

// RunningContainers runs `docker ps` and returns one name per line.
func (r *CLIRuntime) RunningContainers(ctx context.Context) ([]string, error) {
	res, err := r.runner.Run(ctx, domain.Command{
		Name: r.binary,
		Args: []string{"ps", "--format", "{{.Names}}"},
	})
	if err != nil {
		return nil, err
	}
	if !res.Success() {
		return nil, fmt.Errorf("%w: %s", domain.ErrRuntimeUnavailable, firstLine(res.Stderr))
	}

	var names []string
	for _, line := range strings.Split(res.Stdout, "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ ports.ContainerRuntime = (*CLIRuntime)(nil)
