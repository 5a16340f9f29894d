package preflight

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/nuniesmith/fks-main/internal/domain"
)

func probeDaemon(ctx context.Context, env *Env) domain.Finding {
	info, err := env.Containers.Info(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRuntimeUnavailable) {
			return domain.Failed("Docker daemon is not running or not accessible")
		}
		return domain.Failed(fmt.Sprintf("Failed to execute docker info: %v", err))
	}

	msg := "Docker daemon is running and accessible"
	if info.ServerVersion == "" {
		return domain.Pass(msg)
	}
	msg += fmt.Sprintf(" (server %s)", info.ServerVersion)
	if note := versionNote(info.ServerVersion, env.Runtime.MinVersion); note != "" {
		msg += "; " + note
	}
	return domain.Pass(msg)
}

// versionNote flags daemons older than the recommended minimum. It never fails the check.
func versionNote(server, minimum string) string {
	if minimum == "" {
		return ""
	}
	want, err := version.NewVersion(minimum)
	if err != nil {
		return ""
	}
	have, err := version.NewVersion(server)
	if err != nil {
		return ""
	}
	if have.LessThan(want) {
		return fmt.Sprintf("older than recommended %s", minimum)
	}
	return ""
}

func probeContainers(ctx context.Context, env *Env) domain.Finding {
	running, err := env.Containers.RunningContainers(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrRuntimeUnavailable) {
			return domain.Failed("Failed to list Docker containers")
		}
		return domain.Failed(fmt.Sprintf("Failed to check containers: %v", err))
	}

	var missing []string
	for _, required := range env.Settings.RequiredContainers {
		if !containsSubstring(running, required) {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return domain.Failed("Missing containers: " + strings.Join(missing, ", "))
	}
	return domain.Pass(fmt.Sprintf("All %d infrastructure containers running", len(env.Settings.RequiredContainers)))
}

func containsSubstring(names []string, want string) bool {
	for _, name := range names {
		if strings.Contains(name, want) {
			return true
		}
	}
	return false
}

func probeRegistry(ctx context.Context, env *Env) domain.Finding {
	reg, err := env.Registries.Load(ctx)
	if err != nil {
		return domain.Failed(fmt.Sprintf("Invalid registry: %v", err))
	}
	if !reg.HasServices() {
		return domain.Failed(fmt.Sprintf("Invalid registry: %v", domain.ErrNoServices))
	}
	return domain.Pass(fmt.Sprintf("Valid registry with %d services", len(reg.Services)))
}
